package searchd

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// Client calls the search service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client over an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSession opens a session. An empty strategy keeps the one named in configYAML.
func (c *Client) CreateSession(ctx context.Context, strategy, configYAML string) (string, error) {
	out, err := c.invoke(ctx, "CreateSession", map[string]any{"strategy": strategy, "config_yaml": configYAML})
	if err != nil {
		return "", err
	}
	return stringField(out, "session_id"), nil
}

// CreateScenarios fetches the next batch of scenarios.
func (c *Client) CreateScenarios(ctx context.Context, sessionID string) ([]ScenarioView, error) {
	out, err := c.invoke(ctx, "CreateScenarios", map[string]any{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	var scenarios []ScenarioView
	for _, item := range out.GetFields()["scenarios"].GetListValue().GetValues() {
		sc, err := scenarioFromStruct(item.GetStructValue())
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// ReportResults posts the measured properties of one scenario.
func (c *Client) ReportResults(ctx context.Context, sessionID string, scenarioID int, props []models.Property) error {
	_, err := c.invoke(ctx, "ReportResults", map[string]any{
		"session_id":  sessionID,
		"scenario_id": float64(scenarioID),
		"properties":  propertiesToList(props),
	})
	return err
}

// SearchFinished asks whether the search has completed.
func (c *Client) SearchFinished(ctx context.Context, sessionID string) (bool, error) {
	out, err := c.invoke(ctx, "SearchFinished", map[string]any{"session_id": sessionID})
	if err != nil {
		return false, err
	}
	return out.GetFields()["finished"].GetBoolValue(), nil
}

// GetOptimum returns the best, worst and Pareto-optimal scenarios so far.
func (c *Client) GetOptimum(ctx context.Context, sessionID string) (*OptimumView, error) {
	out, err := c.invoke(ctx, "GetOptimum", map[string]any{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	return optimumFromStruct(out)
}

// CloseSession finalizes and forgets a session.
func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	_, err := c.invoke(ctx, "CloseSession", map[string]any{"session_id": sessionID})
	return err
}
