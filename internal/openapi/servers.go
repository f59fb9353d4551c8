package openapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/tidwall/gjson"
)

// declaredServers returns the base URLs a document declares, converting
// Swagger 2 host/basePath/schemes into OpenAPI 3 servers.
func declaredServers(raw []byte, root gjson.Result) ([]string, error) {
	var servers openapi3.Servers

	if strings.HasPrefix(root.Get("swagger").String(), "2") {
		var doc2 openapi2.T
		if err := json.Unmarshal(raw, &doc2); err != nil {
			return nil, fmt.Errorf("unmarshal swagger 2 document: %w", err)
		}
		doc3, err := openapi2conv.ToV3(&doc2)
		if err != nil {
			return nil, fmt.Errorf("convert swagger 2 document: %w", err)
		}
		servers = doc3.Servers
	} else {
		loader := openapi3.NewLoader()
		doc3, err := loader.LoadFromData(raw)
		if err != nil {
			return nil, fmt.Errorf("load openapi 3 document: %w", err)
		}
		servers = doc3.Servers
	}

	var out []string
	for _, s := range servers {
		if s == nil || s.URL == "" {
			continue
		}
		u := s.URL
		for name, v := range s.Variables {
			if v != nil {
				u = strings.ReplaceAll(u, "{"+name+"}", v.Default)
			}
		}
		out = append(out, u)
	}
	return out, nil
}

// rawServers reads servers straight from the JSON when the document does
// not load as a whole.
func rawServers(root gjson.Result) []string {
	var out []string
	root.Get("servers").ForEach(func(_, s gjson.Result) bool {
		u := s.Get("url").String()
		if u == "" {
			return true
		}
		s.Get("variables").ForEach(func(name, v gjson.Result) bool {
			u = strings.ReplaceAll(u, "{"+name.String()+"}", v.Get("default").String())
			return true
		})
		out = append(out, u)
		return true
	})
	if len(out) > 0 {
		return out
	}

	host := root.Get("host").String()
	if host == "" {
		return nil
	}
	scheme := "https"
	if schemes := stringList(root.Get("schemes")); len(schemes) > 0 {
		scheme = schemes[0]
	}
	return []string{scheme + "://" + host + root.Get("basePath").String()}
}
