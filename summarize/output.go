// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package summarize

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// WriteJSON writes the JSON rendering of t, followed by a newline, to path.
// Path "-" means stdout. Paths ending in ".gz" are gzip-compressed.
func WriteJSON(ctx context.Context, path string, t *Tree) (err error) {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	var w io.Writer = out.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(w)
		if _, err = gz.Write(data); err != nil {
			return errors.E(err, "write", path)
		}
		if err = gz.Close(); err != nil {
			return errors.E(err, "write", path)
		}
		return nil
	}
	if _, err = w.Write(data); err != nil {
		return errors.E(err, "write", path)
	}
	return nil
}
