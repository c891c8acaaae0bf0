/*
 * Copyright (c) 2019 OysterPack, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WritePIDFile writes the supervisor's own pid to path, creating parent
// directories as needed. path is normalized against cwd first. A no-op if
// path is empty. Grounded on original_source/src/pid.rs and
// src/fs.rs's open_file.
func WritePIDFile(path string) error {
	if path == "" {
		return nil
	}

	resolved, err := NormalizePath(path)
	if err != nil {
		return errors.Wrap(err, "resolve pid file path")
	}

	if dir := filepath.Dir(resolved); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create pid file directory")
		}
	}

	f, err := os.Create(resolved)
	if err != nil {
		return errors.Wrap(err, "create pid file")
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%d", os.Getpid())
	return err
}
