package credstore

import "testing"

func TestMemStoreRegisterLoginUpdate(t *testing.T) {
	store := NewMemStore()

	if _, result := store.Register("alice", "hunter22"); result != ResultOK {
		t.Fatalf("register: got %v", result)
	}
	if _, result := store.Register("alice", "other"); result != ResultAlreadyExists {
		t.Fatalf("duplicate register: got %v", result)
	}

	if _, result := store.Login("alice", "wrong"); result != ResultPasswordIncorrect {
		t.Fatalf("bad login: got %v", result)
	}
	if _, result := store.Login("alice", "hunter22"); result != ResultOK {
		t.Fatalf("good login: got %v", result)
	}

	if _, result := store.Update("alice", "wrong", "newpass1"); result != ResultPasswordIncorrect {
		t.Fatalf("update with bad old password: got %v", result)
	}
	if _, result := store.Update("alice", "hunter22", "newpass1"); result != ResultOK {
		t.Fatalf("update: got %v", result)
	}
	if _, result := store.Login("alice", "newpass1"); result != ResultOK {
		t.Fatalf("login with new password: got %v", result)
	}
	if _, result := store.Login("alice", "hunter22"); result != ResultPasswordIncorrect {
		t.Fatalf("login with old password after update: got %v", result)
	}
}

func TestMemStoreQueryMissing(t *testing.T) {
	store := NewMemStore()
	if _, result := store.Query("nobody"); result != ResultNotFound {
		t.Fatalf("query missing: got %v", result)
	}
}
