package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps wires the HTTP surface. Voice, Auth and StaticDir are optional.
type Deps struct {
	Conversations Conversations
	Voice         Voice
	Status        StatusSource
	Auth          Authenticator
	CORSOrigin    string
	StaticDir     string
	Logger        *zap.Logger
}

// NewRouter builds the gateway's HTTP handler. The same handler backs the
// local daemon and the managed function.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	gw := NewGatewayHandler(d.Status)
	api.HandleFunc("/health", gw.Health).Methods(http.MethodGet)
	api.HandleFunc("/status", gw.Status).Methods(http.MethodGet)

	conv := NewConversationHandler(d.Conversations, logger)
	api.Handle("/conversations", requireAuth(d.Auth, http.HandlerFunc(conv.List))).Methods(http.MethodGet)
	api.Handle("/send_sms", requireAuth(d.Auth, http.HandlerFunc(conv.SendSMS))).Methods(http.MethodPost)
	api.Handle("/save_contact", requireAuth(d.Auth, http.HandlerFunc(conv.SaveContact))).Methods(http.MethodPost)

	if d.Voice != nil {
		voice := NewVoiceHandler(d.Voice, logger)
		api.HandleFunc("/token", voice.Token).Methods(http.MethodGet)
		api.HandleFunc("/voice", voice.Dial).Methods(http.MethodPost)
	}

	if d.StaticDir != "" {
		r.PathPrefix("/").Handler(spaHandler{dir: d.StaticDir})
	}

	var h http.Handler = r
	h = withCORS(d.CORSOrigin)(h)
	h = withAccessLog(logger)(h)
	h = withRequestID(h)
	return h
}

// spaHandler serves a built web client. Unknown paths fall back to
// index.html so client-side routes survive a reload.
type spaHandler struct {
	dir string
}

func (s spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		http.ServeFile(w, r, filepath.Join(s.dir, "index.html"))
		return
	}
	http.FileServer(http.Dir(s.dir)).ServeHTTP(w, r)
}
