package api

import (
	"net/http"

	"github.com/seenimoa/catalystiv/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file,omitempty"` // path to the file that was read
}

// handleGetConfig returns the running configuration. It is read-only; edit
// the config file or the CATALYSTIV_* environment and restart to change it.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: s.cfg.File(),
		},
	})
}
