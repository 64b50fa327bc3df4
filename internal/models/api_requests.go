package models

type PredictRequest struct {
	Fighter1 string `json:"fighter1" validate:"required,max=128"`
	Fighter2 string `json:"fighter2" validate:"required,max=128"`
}

type ProcessingResponse struct {
	Status string `json:"status"` // always "processing"
}
