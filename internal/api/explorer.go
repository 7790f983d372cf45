// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"

	"dbrelay/cli/internal/errors"
)

// ExplorerNodes fetches the child nodes of the object tree under nodeID.
// An empty nodeID returns the root nodes.
func (s *Session) ExplorerNodes(ctx context.Context, nodeID string) ([]ExplorerNode, error) {
	body := map[string]string{}
	if nodeID != "" {
		body["nodeId"] = nodeID
	}
	status, respBody, err := s.post(ctx, "/ObjectExplorerNodes", body)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, errors.New(errors.NetworkFailed, serverError(status, respBody))
	}
	var out struct {
		Nodes []ExplorerNode `json:"nodes"`
	}
	if err := decodeNormalized(respBody, &out); err != nil {
		return nil, errors.Wrap(errors.ProtocolViolation, "malformed nodes response", err)
	}
	return out.Nodes, nil
}

// ColumnNames fetches the column names of the named table.
func (s *Session) ColumnNames(ctx context.Context, tableName string) ([]string, error) {
	status, respBody, err := s.post(ctx, "/ColumnNames", map[string]string{"tableName": tableName})
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, errors.New(errors.NetworkFailed, serverError(status, respBody))
	}
	var out struct {
		Columns []string `json:"columns"`
	}
	if err := decodeNormalized(respBody, &out); err != nil {
		return nil, errors.Wrap(errors.ProtocolViolation, "malformed columns response", err)
	}
	return out.Columns, nil
}
