package catalog

import "context"

// Store is a read-only source of catalog records.
type Store interface {
	// Pedal fetches a pedal record by id. Returns PEDAL_NOT_FOUND for
	// unknown ids.
	Pedal(ctx context.Context, id string) (*PedalRecord, error)

	// Board fetches a board record by id. Returns BOARD_NOT_FOUND for
	// unknown ids.
	Board(ctx context.Context, id string) (*BoardRecord, error)

	// Amp fetches an amp record by id. Returns NOT_FOUND for unknown ids.
	Amp(ctx context.Context, id string) (*AmpRecord, error)

	// ListPedals returns all pedal records, sorted by id.
	ListPedals(ctx context.Context) ([]*PedalRecord, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
