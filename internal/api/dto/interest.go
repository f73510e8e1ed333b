package dto

import "time"

type InterestDTO struct {
	InterestType string    `json:"interestType"`
	ItemID       string    `json:"itemId"`
	Score        float64   `json:"score"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

type UserInterestsDTO struct {
	UserID    string         `json:"userId"`
	Interests []*InterestDTO `json:"interests"`
}
