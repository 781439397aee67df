package db

import (
	"github.com/apomuden/apomuden/internal/lang"
	"time"
)

type User struct {
	ID                string    `json:"id" bson:"_id"`
	Email             string    `json:"email" bson:"email"`
	FullName          string    `json:"full_name,omitempty" bson:"full_name,omitempty"`
	PasswordHash      string    `json:"password_hash" bson:"password_hash"`
	PreferredLanguage lang.Code `json:"preferred_language" bson:"preferred_language"`
	IsActive          bool      `json:"is_active" bson:"is_active"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// HealthQuery is a question and its answer kept in a user's history.
type HealthQuery struct {
	ID               string    `json:"id" bson:"_id"`
	UserID           string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	QueryText        string    `json:"query_text" bson:"query_text"`
	QueryLanguage    string    `json:"query_language" bson:"query_language"`
	ResponseText     string    `json:"response_text" bson:"response_text"`
	ResponseLanguage lang.Code `json:"response_language" bson:"response_language"`
	Confidence       *float64  `json:"confidence_score" bson:"confidence_score"`
	ModelUsed        string    `json:"model_used" bson:"model_used"`
	IsEmergency      bool      `json:"is_emergency" bson:"is_emergency"`
	ProcessingTime   float64   `json:"processing_time" bson:"processing_time"`
	Timestamp        time.Time `json:"timestamp" bson:"timestamp"`
}

type QueryData struct {
	Question    string `json:"question,omitempty" bson:"question,omitempty"`
	Language    string `json:"language,omitempty" bson:"language,omitempty"`
	Context     string `json:"context,omitempty" bson:"context,omitempty"`
	AudioFile   string `json:"audio_file,omitempty" bson:"audio_file,omitempty"`
	Transcribed string `json:"transcribed_text,omitempty" bson:"transcribed_text,omitempty"`
}

type ResponseData struct {
	Response    string    `json:"response" bson:"response"`
	Confidence  *float64  `json:"confidence" bson:"confidence"`
	Language    lang.Code `json:"language" bson:"language"`
	ModelUsed   string    `json:"model_used" bson:"model_used"`
	IsEmergency bool      `json:"is_emergency" bson:"is_emergency"`
	IsError     bool      `json:"is_error" bson:"is_error"`
}

const (
	TypeQuery = "query"
	TypeError = "error"
)

// QueryLog is the analytics record of one answered question.
type QueryLog struct {
	ID             string       `json:"id" bson:"_id"`
	UserID         string       `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Type           string       `json:"type" bson:"type"`
	Query          QueryData    `json:"query_data" bson:"query_data"`
	Response       ResponseData `json:"response_data" bson:"response_data"`
	ProcessingTime float64      `json:"processing_time" bson:"processing_time"`
	Timestamp      time.Time    `json:"timestamp" bson:"timestamp"`
}

type ErrorLog struct {
	ID             string    `json:"id" bson:"_id"`
	UserID         string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Type           string    `json:"type" bson:"type"`
	Endpoint       string    `json:"endpoint,omitempty" bson:"endpoint,omitempty"`
	Query          QueryData `json:"query_data" bson:"query_data"`
	Error          string    `json:"error" bson:"error"`
	ProcessingTime float64   `json:"processing_time" bson:"processing_time"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
}

type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int64
	PageSize int64
}

func (p Page[T]) TotalPages() int64 {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

type UserStats struct {
	TotalQueries      int64
	RecentQueries     int64
	LanguageBreakdown map[string]int64
	MemberSince       time.Time
}

type Analytics struct {
	AverageProcessingTime float64
	ModelUsage            map[string]int64
	DailyActivity         map[string]int64
}
