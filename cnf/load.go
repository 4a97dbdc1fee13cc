// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cnf

import (
	"os"

	"github.com/hjson/hjson-go"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Load reads a human-edited Hjson configuration file and decodes it on
// top of Defaults(). A missing path is not an error: Defaults() alone
// is returned. A malformed file is.
func Load(path string) (*Options, error) {

	out := Defaults()

	if path == "" {
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, errors.Wrapf(err, "could not read config file %s", path)
	}

	var generic map[string]interface{}
	if err := hjson.Unmarshal(raw, &generic); err != nil {
		return nil, errors.Wrapf(err, "malformed config file %s", path)
	}

	parsed := &Options{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           parsed,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not build config decoder")
	}

	if err := dec.Decode(generic); err != nil {
		return nil, errors.Wrapf(err, "malformed config file %s", path)
	}

	return out.Merge(parsed), nil
}
