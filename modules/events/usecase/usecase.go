package usecase

import (
	"github.com/suimeet/eventgraph/core/objectgraph"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/datagateway"
)

type Usecase struct {
	graph           objectgraph.Client
	feedDg          datagateway.FeedDataGateway
	accountRegistry types.ObjectID
}

func New(graph objectgraph.Client, feedDg datagateway.FeedDataGateway, accountRegistry types.ObjectID) *Usecase {
	return &Usecase{
		graph:           graph,
		feedDg:          feedDg,
		accountRegistry: accountRegistry,
	}
}
