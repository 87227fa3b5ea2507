package azdo

import "time"

// adoList is the platform's standard collection envelope
type adoList[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

type adoProject struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	State          string    `json:"state"`
	Visibility     string    `json:"visibility"`
	LastUpdateTime time.Time `json:"lastUpdateTime"`
}

type adoProjectRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
}

type adoRepo struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	DefaultBranch string        `json:"defaultBranch"`
	Size          int64         `json:"size"`
	WebURL        string        `json:"webUrl"`
	RemoteURL     string        `json:"remoteUrl"`
	IsFork        bool          `json:"isFork"`
	IsDisabled    bool          `json:"isDisabled"`
	Project       adoProjectRef `json:"project"`
}

type adoCommitPerson struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

type adoCommit struct {
	CommitID  string          `json:"commitId"`
	Author    adoCommitPerson `json:"author"`
	Committer adoCommitPerson `json:"committer"`
}

type adoRef struct {
	Name     string `json:"name"`
	ObjectID string `json:"objectId"`
}

type adoItem struct {
	ObjectID string `json:"objectId"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	URL      string `json:"url"`
}
