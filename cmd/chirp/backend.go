// ABOUTME: Backend wiring shared by sending commands.
// ABOUTME: Builds the uploader, publisher, and identity source for the configured backend.
package main

import (
	"fmt"

	"github.com/2389-research/chirp/internal/compose"
	"github.com/2389-research/chirp/internal/config"
	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/notify"
	"github.com/2389-research/chirp/internal/storage"
)

// newSubmitter builds a submitter for the configured backend reporting to n.
// The tweet API posts as the logged-in session identity; X posts as the
// account the access token belongs to.
func newSubmitter(n notify.Notifier) (*compose.Submitter, error) {
	if !globalConfig.HasRemote() {
		return nil, fmt.Errorf("no %s backend configured - run 'chirp setup' or edit the config file", globalConfig.GetBackend())
	}

	logged := notify.Func(func(note models.Notification) {
		globalLogger.Debug().Str("severity", string(note.Severity)).Str("message", note.Message).Msg("notification")
		n.Notify(note)
	})

	opts := []compose.Option{
		compose.WithLanguage(globalConfig.GetLanguage()),
		compose.WithLogger(globalLogger.With().Str("component", "submitter").Logger()),
	}

	switch globalConfig.GetBackend() {
	case config.BackendX:
		x := storage.NewXClient(storage.XCredentials{
			ConsumerKey:    globalConfig.X.ConsumerKey,
			ConsumerSecret: globalConfig.X.ConsumerSecret,
			AccessToken:    globalConfig.X.AccessToken,
			AccessSecret:   globalConfig.X.AccessSecret,
		})
		return compose.NewSubmitter(x, x, x, logged, opts...)
	default:
		remote := storage.NewRemoteClient(globalConfig.API.URL, globalConfig.API.APIKey)
		return compose.NewSubmitter(remote, remote, globalStore, logged, opts...)
	}
}

// requireRemote returns the tweet API client, failing for other backends.
func requireRemote() (*storage.RemoteClient, error) {
	if globalConfig.GetBackend() != config.BackendAPI {
		return nil, fmt.Errorf("this command requires the api backend (current: %s)", globalConfig.GetBackend())
	}
	if !globalConfig.HasRemote() {
		return nil, fmt.Errorf("no api backend configured - run 'chirp setup'")
	}
	return storage.NewRemoteClient(globalConfig.API.URL, globalConfig.API.APIKey), nil
}
