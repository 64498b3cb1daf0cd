package objectgraph

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/pkg/httpclient"
	"golang.org/x/sync/errgroup"
)

const (
	// batchGetChunkSize is the node's hard limit on multi-get input size.
	batchGetChunkSize = 50

	// enumeratePageSize is the page size for dynamic-field listing.
	enumeratePageSize = 100
)

// RPCClient talks to a graph node over JSON-RPC 2.0.
type RPCClient struct {
	client *httpclient.Client
}

var _ Client = (*RPCClient)(nil)

func NewRPCClient(nodeURL string) (*RPCClient, error) {
	client, err := httpclient.New(nodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client for graph node")
	}
	return &RPCClient{client: client}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return errors.Wrap(err, "can't marshal rpc request")
	}
	resp, err := c.client.Post(ctx, "/", httpclient.RequestOptions{Body: body})
	if err != nil {
		return errors.Wrapf(errs.TransportError, "rpc %s: %v", method, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return errors.Wrapf(errs.TransportError, "rpc %s: unexpected status code %d", method, resp.StatusCode())
	}
	var envelope rpcResponse
	if err := resp.UnmarshalBody(&envelope); err != nil {
		return errors.Wrapf(errs.TransportError, "rpc %s: %v", method, err)
	}
	if envelope.Error != nil {
		return errors.Wrapf(errs.TransportError, "rpc %s: node error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return errors.Wrapf(errs.TransportError, "rpc %s: can't unmarshal result", method)
		}
	}
	return nil
}

type objectContent struct {
	DataType string         `json:"dataType"`
	Type     string         `json:"type"`
	Fields   map[string]any `json:"fields"`
}

type objectData struct {
	ObjectID types.ObjectID `json:"objectId"`
	Version  json.Number    `json:"version"`
	Content  *objectContent `json:"content"`
}

type objectResponse struct {
	Data  *objectData `json:"data"`
	Error *struct {
		Code     string `json:"code"`
		ObjectID string `json:"object_id"`
	} `json:"error"`
}

func (r objectResponse) toRawObject() (*types.RawObject, error) {
	if r.Error != nil || r.Data == nil {
		return nil, errors.Wrapf(errs.NotFound, "object %s does not exist", lo.TernaryF(r.Error != nil, func() string { return r.Error.ObjectID }, func() string { return "" }))
	}
	if r.Data.Content == nil {
		return nil, errors.Wrapf(errs.NotFound, "object %s has no content", r.Data.ObjectID)
	}
	version, _ := cast.ToUint64E(r.Data.Version.String())
	return &types.RawObject{
		ID:      r.Data.ObjectID,
		Kind:    r.Data.Content.Type,
		Version: version,
		Fields:  r.Data.Content.Fields,
	}, nil
}

var showContentOptions = map[string]any{"showContent": true}

func (c *RPCClient) PointGet(ctx context.Context, id types.ObjectID) (*types.RawObject, error) {
	var resp objectResponse
	if err := c.call(ctx, "sui_getObject", []any{id.String(), showContentOptions}, &resp); err != nil {
		return nil, errors.WithStack(err)
	}
	raw, err := resp.toRawObject()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return raw, nil
}

func (c *RPCClient) BatchGet(ctx context.Context, ids []types.ObjectID) ([]*types.RawObject, error) {
	if len(ids) == 0 {
		return []*types.RawObject{}, nil
	}

	chunks := lo.Chunk(ids, batchGetChunkSize)
	results := make([][]*types.RawObject, len(chunks))

	// chunks are independent requests, issue them all at once
	eg, egctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		eg.Go(func() error {
			params := []any{lo.Map(chunk, func(id types.ObjectID, _ int) string { return id.String() }), showContentOptions}
			var resp []objectResponse
			if err := c.call(egctx, "sui_multiGetObjects", params, &resp); err != nil {
				return errors.WithStack(err)
			}
			if len(resp) != len(chunk) {
				return errors.Wrapf(errs.TransportError, "multi-get returned %d objects for %d ids", len(resp), len(chunk))
			}
			results[i] = lo.Map(resp, func(r objectResponse, _ int) *types.RawObject {
				raw, err := r.toRawObject()
				if err != nil {
					// missing objects surface as nil slots, order preserved
					return nil
				}
				return raw
			})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}
	return lo.Flatten(results), nil
}

type dynamicFieldName struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type dynamicFieldInfo struct {
	Name     dynamicFieldName `json:"name"`
	ObjectID types.ObjectID   `json:"objectId"`
}

type dynamicFieldPage struct {
	Data        []dynamicFieldInfo `json:"data"`
	NextCursor  *string            `json:"nextCursor"`
	HasNextPage bool               `json:"hasNextPage"`
}

func (c *RPCClient) EnumerateChildren(ctx context.Context, table types.ObjectID) ([]types.ChildRef, error) {
	var (
		children []types.ChildRef
		cursor   any
	)
	for {
		var page dynamicFieldPage
		if err := c.call(ctx, "suix_getDynamicFields", []any{table.String(), cursor, enumeratePageSize}, &page); err != nil {
			return nil, errors.WithStack(err)
		}
		for _, field := range page.Data {
			children = append(children, types.ChildRef{
				Key:      cast.ToString(field.Name.Value),
				ObjectID: field.ObjectID,
			})
		}
		if !page.HasNextPage || page.NextCursor == nil {
			return children, nil
		}
		cursor = *page.NextCursor
	}
}

type logEntryID struct {
	TxDigest string      `json:"txDigest"`
	EventSeq json.Number `json:"eventSeq"`
}

type logEntryData struct {
	ID          logEntryID     `json:"id"`
	Sender      types.Address  `json:"sender"`
	Type        string         `json:"type"`
	ParsedJSON  map[string]any `json:"parsedJson"`
	TimestampMs json.Number    `json:"timestampMs"`
}

type logPage struct {
	Data        []logEntryData `json:"data"`
	HasNextPage bool           `json:"hasNextPage"`
}

func (c *RPCClient) QueryLog(ctx context.Context, filter LogFilter, order Order, limit int) ([]types.LogEntry, error) {
	query := map[string]any{"Package": filter.Package.String()}
	if filter.Module != "" {
		query = map[string]any{
			"MoveModule": map[string]any{
				"package": filter.Package.String(),
				"module":  filter.Module,
			},
		}
	}
	var page logPage
	if err := c.call(ctx, "suix_queryEvents", []any{query, nil, limit, order == OrderNewestFirst}, &page); err != nil {
		return nil, errors.WithStack(err)
	}

	entries := make([]types.LogEntry, 0, len(page.Data))
	for _, data := range page.Data {
		seq, _ := cast.ToUint64E(data.ID.EventSeq.String())
		ts, _ := cast.ToInt64E(data.TimestampMs.String())
		entries = append(entries, types.LogEntry{
			TxDigest:    data.ID.TxDigest,
			EventSeq:    seq,
			Kind:        kindFromType(data.Type),
			Sender:      data.Sender,
			TimestampMs: ts,
			Payload:     data.ParsedJSON,
		})
	}
	return entries, nil
}

// kindFromType strips the package and module qualifiers from a struct tag,
// e.g. "0x2a..::events::EventCreated" -> "EventCreated".
func kindFromType(structTag string) string {
	if idx := strings.LastIndex(structTag, "::"); idx >= 0 {
		return structTag[idx+2:]
	}
	return structTag
}
