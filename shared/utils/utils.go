// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package utils contains basic utilities.
package utils

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	log "github.com/golang/glog"
	"cloud.google.com/go/storage"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/ugorji/go/codec"
)

// ParseGCSPath gets the bucket and object names from the input filename.
func ParseGCSPath(filename string) (bucket, object string, err error) {
	parsed, err := url.Parse(filename)
	if err != nil {
		return
	}
	if parsed.Scheme != "gs" {
		err = fmt.Errorf("object %q must have 'gs' scheme", filename)
		return
	}
	if parsed.Host == "" {
		err = fmt.Errorf("object %q must have bucket", filename)
		return
	}

	bucket = parsed.Host
	if parsed.Path != "" {
		object = parsed.Path[1:]
	}
	return
}

func newGCSReader(ctx context.Context, filename string) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket, object, err := ParseGCSPath(filename)
	if err != nil {
		return nil, err
	}
	return client.Bucket(bucket).Object(object).NewReader(ctx)
}

func newGCSWriter(ctx context.Context, filename string) (io.WriteCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket, object, err := ParseGCSPath(filename)
	if err != nil {
		return nil, err
	}
	return client.Bucket(bucket).Object(object).NewWriter(ctx), nil
}

// ReadLines reads the input file line by line and returns the content as a slice of strings.
//
// The file can be stored locally or in the GCS.
func ReadLines(ctx context.Context, filename string) ([]string, error) {
	var reader io.ReadCloser
	var err error
	if strings.HasPrefix(filename, "gs://") {
		reader, err = newGCSReader(ctx, filename)
	} else {
		reader, err = os.Open(filename)
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var result []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, scanner.Err()
}

// WriteLines writes the input string slice to the output file, one string per line.
//
// The file can be stored locally or in the GCS.
func WriteLines(ctx context.Context, lines []string, filename string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line + "\n")
	}
	return WriteBytes(ctx, buf.Bytes(), filename)
}

// WriteBytes writes bytes into a local or GCS file. Missing local directories are created.
func WriteBytes(ctx context.Context, data []byte, filename string) error {
	if strings.HasPrefix(filename, "gs://") {
		writer, err := newGCSWriter(ctx, filename)
		if err != nil {
			return err
		}
		if _, err := writer.Write(data); err != nil {
			writer.Close()
			return err
		}
		return writer.Close()
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return ioutil.WriteFile(filename, data, 0644)
}

// httpClient retries transient failures when reading files served at an URL.
var httpClient = newHTTPClient()

func newHTTPClient() *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return client.StandardClient()
}

func readBytesFromURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to read %q: %s", url, resp.Status)
	}
	log.V(2).Infof("reading %d bytes from %s", resp.ContentLength, url)
	return ioutil.ReadAll(resp.Body)
}

// ReadBytes reads bytes from a file stored locally, in GCS or served at an URL.
func ReadBytes(ctx context.Context, filename string) ([]byte, error) {
	u, err := url.Parse(filename)
	if err == nil {
		if u.Scheme == "gs" {
			reader, err := newGCSReader(ctx, filename)
			if err != nil {
				return nil, err
			}
			defer reader.Close()
			return ioutil.ReadAll(reader)
		} else if u.Scheme == "http" || u.Scheme == "https" {
			return readBytesFromURL(ctx, filename)
		}
	}
	return ioutil.ReadFile(filename)
}

// MarshalCBOR serializes the input data in CBOR format.
func MarshalCBOR(v interface{}) ([]byte, error) {
	encBuf := new(bytes.Buffer)
	enc := codec.NewEncoder(encBuf, &codec.CborHandle{})
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return encBuf.Bytes(), nil
}

// UnmarshalCBOR parses the bytes in CBOR format.
func UnmarshalCBOR(b []byte, v interface{}) error {
	decBuf := bytes.NewBuffer(b)
	dec := codec.NewDecoder(decBuf, &codec.CborHandle{})
	return dec.Decode(v)
}

// JoinPath returns the path of filename inside directory. Directories in GCS keep their
// "gs://" prefix, which path.Join would collapse to "gs:/".
func JoinPath(directory, filename string) string {
	if !strings.HasPrefix(directory, "gs://") {
		return path.Join(directory, filename)
	}
	return strings.TrimSuffix(directory, "/") + "/" + filename
}
