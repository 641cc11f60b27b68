package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrimeAPI/JDA/internal/state"
	"github.com/PrimeAPI/JDA/internal/storage"
)

type Config struct {
	Port uint16
}

func NewConfig(port uint16) *Config {
	return &Config{Port: port}
}

// API exposes read-only inspection endpoints over the entity cache and the
// moderation audit log.
type API struct {
	ctx     context.Context
	logger  *zap.SugaredLogger
	state   *state.Store
	storage *storage.Storage
	router  *gin.Engine
	serv    *http.Server
}

func NewAPI(ctx context.Context, logger *zap.SugaredLogger, st *state.Store, store *storage.Storage, config *Config) *API {
	a := &API{
		ctx:     ctx,
		logger:  logger,
		state:   st,
		storage: store,
		router:  gin.New(),
	}
	a.serv = &http.Server{Addr: fmt.Sprintf(":%d", config.Port), Handler: a.router}
	return a
}

func (a *API) Listen() {
	a.registerGetGuilds()
	a.registerGetGuildStats()
	a.registerGetMemberRoles()
	a.registerGetModActions()
	go func() {
		if err := a.serv.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Errorf("Server returned with error: %s.", err)
			}
		}
	}()
}

func (a *API) Close() error {
	return a.serv.Close()
}
