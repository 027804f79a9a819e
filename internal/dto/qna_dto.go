package dto

type UploadQnAResponse struct {
	EntryCount int `json:"entry_count"`
}

type QnAStatusResponse struct {
	EntryCount int64 `json:"entry_count"`
}
