// Package codec provides pluggable body codecs for the test harness.
//
// A Codec pairs a content type with marshal/unmarshal functions:
//   - JSON via encoding/json
//   - YAML via gopkg.in/yaml.v3
//   - URL-encoded forms via net/url
//
// Multipart bodies are built separately through MultipartForm, since they
// accumulate heterogeneous parts rather than encoding a single value.
package codec
