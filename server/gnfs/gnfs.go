// Package gnfs has services for interacting with the conversion server backend
// decoupled from the API that accesses it.
package gnfs

import (
	"github.com/dekarrin/greibach/server/dao"
	"go.uber.org/zap"
)

// DefaultMaxAllOrdersVariables is the largest grammar, in variables, that a
// Service converts with every ordering when MaxAllOrdersVariables is not set.
const DefaultMaxAllOrdersVariables = 6

// Service is a service for interacting with and modifying the conversion
// server backend. It performs the actions requested and makes calls to server
// persistence to preserve the backend state.
//
// The zero-value of Service is not ready to be used; assign a valid DAO store
// to DB before attempting to use it.
type Service struct {

	// DB is the persistence store of the service.
	DB dao.Store

	// Log receives a Debug entry for each stage of each conversion. If nil,
	// nothing is logged.
	Log *zap.Logger

	// MaxAllOrdersVariables is the largest number of variables a grammar can
	// have to be converted with every ordering. If less than 1,
	// DefaultMaxAllOrdersVariables is used.
	MaxAllOrdersVariables int

	// Workers is the number of orderings converted at once when converting
	// with every ordering. If less than 1, there is no limit.
	Workers int
}

func (svc Service) maxAllOrdersVariables() int {
	if svc.MaxAllOrdersVariables < 1 {
		return DefaultMaxAllOrdersVariables
	}
	return svc.MaxAllOrdersVariables
}
