package productcache

import (
	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/types"
)

type (
	// Product is the sole entity served by the catalog.
	Product = types.Product
	// NewProduct holds the fields of a product being created.
	NewProduct = types.NewProduct
	// ProductPatch is a partial update; nil fields are left untouched.
	ProductPatch = types.ProductPatch
	// Target selects the primary or the replica store.
	Target = types.Target
	// Outcome is the terminal state of a catalog operation.
	Outcome = types.Outcome

	// Configuration is the full service configuration.
	Configuration = config.Config

	// Serializer encodes products stored in the cache.
	Serializer = types.Serializer
	// MetricsRecorder receives catalog measurements.
	MetricsRecorder = types.MetricsRecorder
	// Publisher ships metrics to an external sink.
	Publisher = types.Publisher
	// Logger provides logging operations.
	Logger = types.Logger
	// SecretString redacts its value when printed or marshaled.
	SecretString = types.SecretString
)

const (
	TargetPrimary = types.TargetPrimary
	TargetReplica = types.TargetReplica
)

// Secret wraps a sensitive configuration value such as a DSN.
func Secret(value string) SecretString {
	return types.NewSecretString(value)
}
