package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	viewIDKey      = "view_id"
	lookupPhoneKey = "lookup_phone"
	lookupNameKey  = "lookup_name"

	flashSuccessKey = "_flash_success"
	flashErrorKey   = "_flash_error"
)

// Lookup is the name and phone a visitor last found their record with.
type Lookup struct {
	Phone    string
	FullName string
}

// Flashes are one-shot messages carried across a redirect.
type Flashes struct {
	Success []string
	Error   []string
}

// Empty reports whether there is nothing to show.
func (f Flashes) Empty() bool { return len(f.Success) == 0 && len(f.Error) == 0 }

// ViewID returns the visitor's view key, minting and saving one on first
// use. The key names the visitor's tracker snapshot.
func (sm *SessionManager) ViewID(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, _ := sm.GetSession(r)
	if id := getString(sess, viewIDKey); id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Values[viewIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}

// PeekViewID returns the view key without creating one.
func (sm *SessionManager) PeekViewID(r *http.Request) string {
	sess, _ := sm.GetSession(r)
	return getString(sess, viewIDKey)
}

// Lookup returns the remembered tracker identity.
func (sm *SessionManager) Lookup(r *http.Request) (Lookup, bool) {
	sess, _ := sm.GetSession(r)
	l := Lookup{Phone: getString(sess, lookupPhoneKey), FullName: getString(sess, lookupNameKey)}
	return l, l.Phone != "" && l.FullName != ""
}

// SetLookup remembers the tracker identity.
func (sm *SessionManager) SetLookup(w http.ResponseWriter, r *http.Request, l Lookup) error {
	sess, _ := sm.GetSession(r)
	sess.Values[lookupPhoneKey] = l.Phone
	sess.Values[lookupNameKey] = l.FullName
	return sess.Save(r, w)
}

// ClearLookup forgets the tracker identity.
func (sm *SessionManager) ClearLookup(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.GetSession(r)
	delete(sess.Values, lookupPhoneKey)
	delete(sess.Values, lookupNameKey)
	return sess.Save(r, w)
}

// FlashSuccess queues a success message for the next page render.
func (sm *SessionManager) FlashSuccess(w http.ResponseWriter, r *http.Request, msg string) error {
	return sm.addFlash(w, r, flashSuccessKey, msg)
}

// FlashError queues an error message for the next page render.
func (sm *SessionManager) FlashError(w http.ResponseWriter, r *http.Request, msg string) error {
	return sm.addFlash(w, r, flashErrorKey, msg)
}

func (sm *SessionManager) addFlash(w http.ResponseWriter, r *http.Request, key, msg string) error {
	sess, _ := sm.GetSession(r)
	sess.AddFlash(msg, key)
	return sess.Save(r, w)
}

// TakeFlashes returns and clears queued messages.
func (sm *SessionManager) TakeFlashes(w http.ResponseWriter, r *http.Request) Flashes {
	sess, err := sm.GetSession(r)
	if err != nil {
		return Flashes{}
	}
	f := Flashes{
		Success: flashStrings(sess, flashSuccessKey),
		Error:   flashStrings(sess, flashErrorKey),
	}
	if !f.Empty() {
		if err := sess.Save(r, w); err != nil {
			sm.log.Warn("failed to clear flashes", zap.Error(err))
		}
	}
	return f
}

func flashStrings(sess *sessions.Session, key string) []string {
	var out []string
	for _, v := range sess.Flashes(key) {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
