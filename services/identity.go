package services

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"artist-hub/domain/event"
	"artist-hub/errors"
	goerrors "errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// currentUser fails fast when no user is signed in.
func currentUser(identity contract.Identity) (domain.UserID, error) {
	user, err := identity.CurrentUser()
	switch {
	case err == nil && user != "":
		return user, nil
	case err == nil, goerrors.Is(err, errors.ErrUnauthenticated):
		return "", errors.ErrUnauthenticated
	default:
		return "", fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
}

// publish never blocks a store operation on a slow consumer.
func publish(log *slog.Logger, events chan<- event.StoreEvent, evt event.StoreEvent) {
	if events == nil {
		return
	}
	select {
	case events <- evt:
	default:
		log.Debug("Store event lost", "kind", evt.Kind())
	}
}
