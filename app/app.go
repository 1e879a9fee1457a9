package app

import (
	"github.com/go-chi/oauth"

	"github.com/formdeck/formdeck/config"
	"github.com/formdeck/formdeck/store"
)

// App bundles the collaborators handlers need: the stores, the bearer
// server, and the parsed configuration.
type App struct {
	Forms       store.Forms
	Submissions store.Submissions
	KV          store.KV
	*oauth.BearerServer
	config.Config
}
