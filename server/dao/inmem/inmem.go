// Package inmem provides a dao.Store that keeps everything in memory and loses
// it when the server shuts down.
package inmem

import (
	"github.com/dekarrin/greibach/server/dao"
)

type store struct {
	convs *InMemoryConversionsRepository
}

func NewDatastore() dao.Store {
	return &store{
		convs: NewConversionsRepository(),
	}
}

func (s *store) Conversions() dao.ConversionRepository {
	return s.convs
}

func (s *store) Close() error {
	return s.convs.Close()
}
