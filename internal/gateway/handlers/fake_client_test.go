package handlers

import (
	"context"

	"github.com/relaydocs/relaygw/internal/backend/docservice"
)

// fakeClient is an in-memory docservice.Client.
type fakeClient struct {
	users    map[string]string // username -> password
	err      error
	calls    []string
	lastUser string
	created  docservice.CreateDocument
	updated  docservice.UpdateDocument
	shared   docservice.ShareDocument
}

func newFakeClient() *fakeClient {
	return &fakeClient{users: map[string]string{"alice": "correct-horse"}}
}

func (f *fakeClient) record(op, userID string) error {
	f.calls = append(f.calls, op)
	f.lastUser = userID
	return f.err
}

func (f *fakeClient) Signup(_ context.Context, creds docservice.Credentials) (docservice.User, error) {
	if err := f.record("signup", ""); err != nil {
		return docservice.User{}, err
	}
	if _, exists := f.users[creds.Username]; exists {
		return docservice.User{}, &docservice.DownstreamError{StatusCode: 409, Message: "Username already exists"}
	}
	f.users[creds.Username] = creds.Password
	return docservice.User{UserID: "id-" + creds.Username}, nil
}

func (f *fakeClient) Login(_ context.Context, creds docservice.Credentials) (docservice.User, error) {
	if err := f.record("login", ""); err != nil {
		return docservice.User{}, err
	}
	if pw, ok := f.users[creds.Username]; !ok || pw != creds.Password {
		return docservice.User{}, &docservice.DownstreamError{StatusCode: 401, Message: "Invalid credentials"}
	}
	return docservice.User{UserID: "id-" + creds.Username}, nil
}

func (f *fakeClient) ListDocuments(_ context.Context, userID string) ([]docservice.Document, error) {
	if err := f.record("list", userID); err != nil {
		return nil, err
	}
	return []docservice.Document{{ID: "d1", OwnerUserID: userID}}, nil
}

func (f *fakeClient) CreateDocument(_ context.Context, userID string, body docservice.CreateDocument) (docservice.Document, error) {
	if err := f.record("create", userID); err != nil {
		return docservice.Document{}, err
	}
	f.created = body
	return docservice.Document{ID: "d2", OwnerUserID: userID, Title: body.Title}, nil
}

func (f *fakeClient) GetDocument(_ context.Context, userID, id string) (docservice.Document, error) {
	if err := f.record("get", userID); err != nil {
		return docservice.Document{}, err
	}
	return docservice.Document{ID: id}, nil
}

func (f *fakeClient) UpdateDocument(_ context.Context, userID, id string, body docservice.UpdateDocument) (docservice.Document, error) {
	if err := f.record("update", userID); err != nil {
		return docservice.Document{}, err
	}
	f.updated = body
	return docservice.Document{ID: id}, nil
}

func (f *fakeClient) ShareDocument(_ context.Context, userID, id string, body docservice.ShareDocument) (docservice.Document, error) {
	if err := f.record("share", userID); err != nil {
		return docservice.Document{}, err
	}
	f.shared = body
	return docservice.Document{ID: id}, nil
}

var downstream503 = docservice.DownstreamError{StatusCode: 503, Message: "Service unavailable"}
