package tester

import (
	"os"

	"github.com/mdworks/markpad/internal/store"
)

const testPath = "../../.test/"

var s *store.GormStore

// Setup creates a fresh file-backed test database under .test/.
func Setup() {
	RemoveDBFile()

	err := os.MkdirAll(testPath+"db", os.ModePerm)
	if err != nil {
		panic(err)
	}

	s, err = store.Open(testPath + "db/markpad.db")
	if err != nil {
		panic(err)
	}
}

// TestStore returns the store created by Setup.
func TestStore() *store.GormStore {
	return s
}

// MemoryStore returns an independent in-memory store, useful for tests that
// exercise the single-connection policy.
func MemoryStore() *store.GormStore {
	ms, err := store.Open(store.MemoryPath)
	if err != nil {
		panic(err)
	}
	return ms
}

func RemoveDBFile() {
	err := os.RemoveAll(testPath)
	if err != nil {
		panic(err)
	}
}
