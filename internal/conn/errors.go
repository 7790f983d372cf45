// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package conn

import "errors"

// ErrUnknownConnection is returned for operations on a key with no
// registered session.
var ErrUnknownConnection = errors.New("unknown connection")
