package mocks

import (
	"context"
	"io"
)

// MockImageStorage is a simple mock for the image storage provider
type MockImageStorage struct {
	UploadImageFunc func(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	DeleteImageFunc func(ctx context.Context, fileURL string) error

	UploadCalls int
	Uploaded    []byte
	Folders     []string
	Deleted     []string
}

func (m *MockImageStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	m.UploadCalls++
	m.Folders = append(m.Folders, folder)
	if m.UploadImageFunc != nil {
		return m.UploadImageFunc(ctx, r, folder, fileName)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.Uploaded = data
	return "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + fileName, nil
}

func (m *MockImageStorage) DeleteImage(ctx context.Context, fileURL string) error {
	m.Deleted = append(m.Deleted, fileURL)
	if m.DeleteImageFunc != nil {
		return m.DeleteImageFunc(ctx, fileURL)
	}
	return nil
}

// MockUnlocker records achievement unlocks
type MockUnlocker struct {
	UnlockFunc func(ctx context.Context, userID, id string) (bool, error)

	Unlocked []string
}

func (m *MockUnlocker) Unlock(ctx context.Context, userID, id string) (bool, error) {
	m.Unlocked = append(m.Unlocked, id)
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, userID, id)
	}
	return true, nil
}
