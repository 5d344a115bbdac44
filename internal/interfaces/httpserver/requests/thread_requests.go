package requests

// RunThreadRequest is the body of POST /v1/threads/run.
type RunThreadRequest struct {
	UserInput  string `json:"user_input" binding:"required"`
	ThreadID   string `json:"thread_id" binding:"required,max=64"`
	ThreadName string `json:"thread_name"`
}

// CreateThreadRequest is the optional body of POST /v1/threads.
type CreateThreadRequest struct {
	Name string `json:"name"`
}

// RenameThreadRequest is the body of PATCH /v1/threads/:thread_id.
type RenameThreadRequest struct {
	NewName string `json:"new_name" binding:"required"`
}
