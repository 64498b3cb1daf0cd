package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/ingest"
	"github.com/suimeet/eventgraph/modules/events/usecase"
)

type HttpHandler struct {
	usecase  *usecase.Usecase
	sessions *ingest.Manager
}

func New(usecase *usecase.Usecase, sessions *ingest.Manager) *HttpHandler {
	return &HttpHandler{
		usecase:  usecase,
		sessions: sessions,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

func resolveAddress(wallet string) (types.Address, error) {
	addr, err := types.ParseAddress(wallet)
	if err != nil {
		return types.Address{}, errors.WithStack(errs.NewPublicError("unable to resolve address from \"wallet\""))
	}
	return addr, nil
}

func resolveObjectID(raw string) (types.ObjectID, error) {
	id, err := types.ParseObjectID(raw)
	if err != nil {
		return types.ObjectID{}, errors.WithStack(errs.NewPublicError("unable to resolve object id from \"id\""))
	}
	return id, nil
}
