package file

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
)

// Config keys for the reviewer identity.
const (
	KeyClientID     = "reviewer.client_id"
	KeyReviewerName = "reviewer.name"
)

// LoadReviewer returns the local reviewer identity, generating and
// persisting a fresh anonymous client id on first use. The id is stable
// for the installation's lifetime so remote submissions upsert instead of
// duplicating.
func LoadReviewer(store driven.ConfigStore) (domain.Reviewer, error) {
	clientID := store.GetString(KeyClientID)
	if clientID == "" {
		clientID = uuid.NewString()
		if err := store.Set(KeyClientID, clientID); err != nil {
			return domain.Reviewer{}, fmt.Errorf("persisting client id: %w", err)
		}
	}
	return domain.Reviewer{
		ClientID: clientID,
		Name:     store.GetString(KeyReviewerName),
	}, nil
}
