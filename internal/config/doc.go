// Package config resolves where the builder lives and which names it uses.
//
// The builder is laid out next to its own executable:
//
//	<tool dir>/
//	  qemu-eos-builder
//	  docker_builder/
//	    dockerfile_2.5.0
//	    dockerfile_4.2.1
//	    builder.yaml        (optional overrides)
//
// Settings carries the fixed names (image, container, archive script,
// etc.). Its defaults reproduce the classic build exactly; an optional
// builder.yaml (gopkg.in/yaml.v3) or builder.jsonc (github.com/tidwall/jsonc)
// in the builder directory can override them for forks with a different
// layout.
package config
