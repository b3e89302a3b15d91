package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bsead/budget-pro/internal/utils"
)

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := utils.ParseUUID(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return id, nil
}
