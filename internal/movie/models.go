package movie

import "time"

// Movie is a film record. Episode numbers are unique.
type Movie struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	EpisodeID    int       `json:"episode_id"`
	OpeningCrawl string    `json:"opening_crawl"`
	Director     string    `json:"director"`
	Producer     string    `json:"producer"`
	ReleaseDate  string    `json:"release_date"`
	Species      []string  `json:"species"`
	Starships    []string  `json:"starships"`
	Vehicles     []string  `json:"vehicles"`
	Characters   []string  `json:"characters"`
	Planets      []string  `json:"planets"`
	URL          string    `json:"url"`
	Created      time.Time `json:"created"`
	Edited       time.Time `json:"edited"`
}

// NewMovie carries the fields of a movie to insert. Zero Created and Edited
// are replaced with the insertion time.
type NewMovie struct {
	Title        string    `json:"title"`
	EpisodeID    int       `json:"episode_id"`
	OpeningCrawl string    `json:"opening_crawl"`
	Director     string    `json:"director"`
	Producer     string    `json:"producer"`
	ReleaseDate  string    `json:"release_date"`
	Species      []string  `json:"species"`
	Starships    []string  `json:"starships"`
	Vehicles     []string  `json:"vehicles"`
	Characters   []string  `json:"characters"`
	Planets      []string  `json:"planets"`
	URL          string    `json:"url"`
	Created      time.Time `json:"created"`
	Edited       time.Time `json:"edited"`
}

// Changes lists the fields to update; nil fields are kept.
type Changes struct {
	Title        *string   `json:"title"`
	EpisodeID    *int      `json:"episode_id"`
	OpeningCrawl *string   `json:"opening_crawl"`
	Director     *string   `json:"director"`
	Producer     *string   `json:"producer"`
	ReleaseDate  *string   `json:"release_date"`
	Species      *[]string `json:"species"`
	Starships    *[]string `json:"starships"`
	Vehicles     *[]string `json:"vehicles"`
	Characters   *[]string `json:"characters"`
	Planets      *[]string `json:"planets"`
	URL          *string   `json:"url"`
}

// Filter narrows a listing; empty fields match everything.
type Filter struct {
	Title       string
	EpisodeID   *int
	Director    string
	Producer    string
	ReleaseDate string
}
