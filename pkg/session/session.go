package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

type Store struct {
	name  string
	inner sessions.Store
}

func NewCookieStore(name string, secret []byte) *Store {
	return &Store{
		name:  name,
		inner: sessions.NewCookieStore(secret),
	}
}

// Get returns the session of this request, or a new one if the request carries
// no valid session cookie.
func (s *Store) Get(r *http.Request) (*sessions.Session, error) {
	return s.inner.Get(r, s.name)
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	return s.inner.Save(r, w, sess)
}

// Value reads a single value from the request session. It returns nil if the
// session or the key does not exist.
func (s *Store) Value(r *http.Request, key string) any {
	sess, err := s.Get(r)
	if err != nil {
		return nil
	}

	return sess.Values[key]
}
