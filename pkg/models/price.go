// Package models defines the core data structures used throughout ResearchIQ.
package models

import "time"

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// PriceData bundles the fetched price history with quote-level metadata.
// History is chronological and immutable once fetched.
type PriceData struct {
	Ticker             string    `json:"ticker"`
	CompanyName        string    `json:"company_name"`
	Currency           string    `json:"currency"`
	CurrentPrice       float64   `json:"current_price"`
	PriceChange        float64   `json:"price_change"`
	PriceChangePercent float64   `json:"price_change_percent"`
	MarketCap          float64   `json:"market_cap,omitempty"`
	Sector             string    `json:"sector,omitempty"`
	Industry           string    `json:"industry,omitempty"`
	History            []OHLCV   `json:"history"`
	FetchedAt          time.Time `json:"fetched_at"`
}

// Closes returns the chronological closing prices from the history.
func (p *PriceData) Closes() []float64 {
	closes := make([]float64, len(p.History))
	for i, c := range p.History {
		closes[i] = c.Close
	}
	return closes
}

// Volumes returns the chronological volumes from the history.
func (p *PriceData) Volumes() []int64 {
	vols := make([]int64, len(p.History))
	for i, c := range p.History {
		vols[i] = c.Volume
	}
	return vols
}
