package viewer

import "sync"

// Recorder is a Display that keeps the most recent value of every label.
type Recorder struct {
	mu         sync.Mutex
	pageCount  int
	pageNumber int
	answer     string
	notices    []Notice
}

// Labels is a snapshot of a Recorder.
type Labels struct {
	PageCount  int      `json:"page_count"`
	PageNumber int      `json:"page_number"`
	Answer     string   `json:"answer"`
	Notices    []Notice `json:"notices,omitempty"`
}

func (r *Recorder) ShowPageCount(n int) {
	r.mu.Lock()
	r.pageCount = n
	r.mu.Unlock()
}

func (r *Recorder) ShowPageNumber(n int) {
	r.mu.Lock()
	r.pageNumber = n
	r.mu.Unlock()
}

func (r *Recorder) ShowAnswer(text string) {
	r.mu.Lock()
	r.answer = text
	r.mu.Unlock()
}

func (r *Recorder) ShowNotice(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Labels returns the current label values.
func (r *Recorder) Labels() Labels {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Labels{
		PageCount:  r.pageCount,
		PageNumber: r.pageNumber,
		Answer:     r.answer,
		Notices:    append([]Notice(nil), r.notices...),
	}
}

// Displays fans every call out to each Display in order.
type Displays []Display

func (ds Displays) ShowPageCount(n int) {
	for _, d := range ds {
		d.ShowPageCount(n)
	}
}

func (ds Displays) ShowPageNumber(n int) {
	for _, d := range ds {
		d.ShowPageNumber(n)
	}
}

func (ds Displays) ShowAnswer(text string) {
	for _, d := range ds {
		d.ShowAnswer(text)
	}
}

func (ds Displays) ShowNotice(n Notice) {
	for _, d := range ds {
		d.ShowNotice(n)
	}
}
