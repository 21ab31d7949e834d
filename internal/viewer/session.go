package viewer

// session is the mutable state of one viewing session. It is owned by a
// Controller and guarded by its mutex.
type session struct {
	document     Document
	pageNumber   int
	file         *File
	contractID   string
	uploadStatus string
	objectURL    string
}

func (s *session) state() State {
	if s.document != nil && s.contractID != "" {
		return StateLoaded
	}
	return StateEmpty
}

// SessionInfo is a read-only snapshot of a session.
type SessionInfo struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	FileName     string `json:"file_name,omitempty"`
	ContractID   string `json:"contract_id,omitempty"`
	UploadStatus string `json:"upload_status,omitempty"`
	PageNumber   int    `json:"page_number"`
	PageCount    int    `json:"page_count"`
	ObjectURL    string `json:"object_url,omitempty"`
}

func (s *session) info(id string) SessionInfo {
	info := SessionInfo{
		ID:           id,
		State:        s.state().String(),
		ContractID:   s.contractID,
		UploadStatus: s.uploadStatus,
		PageNumber:   s.pageNumber,
		ObjectURL:    s.objectURL,
	}
	if s.file != nil {
		info.FileName = s.file.Name
	}
	if s.document != nil {
		info.PageCount = s.document.NumPages()
	}
	return info
}
