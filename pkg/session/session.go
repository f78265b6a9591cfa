package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

type Store struct {
	name  string
	store sessions.Store
}

func NewCookieStore(name string, keypairs ...[]byte) *Store {
	store := sessions.NewCookieStore(keypairs...)
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &Store{name: name, store: store}
}

func (s *Store) Name() string {
	return s.name
}

func (s *Store) Get(r *http.Request) (*sessions.Session, error) {
	return s.store.Get(r, s.name)
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return s.store.Save(r, w, session)
}
