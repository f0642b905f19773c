package openapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-openapi/jsonpointer"

	"github.com/barisgit/fluxdoc/internal/diag"
)

// CheckReferences walks the serialized document and fails on the first $ref that
// does not point at an existing location under components.
func CheckReferences(doc *huma.OpenAPI) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return walkRefs(tree, tree, "")
}

func walkRefs(root, node any, at string) error {
	switch n := node.(type) {
	case map[string]any:
		if ref, ok := n["$ref"].(string); ok {
			if err := resolve(root, ref); err != nil {
				return diag.DanglingReference(ref, "#"+at)
			}
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := walkRefs(root, n[k], at+"/"+jsonpointer.Escape(k)); err != nil {
				return err
			}
		}
	case []any:
		for i, v := range n {
			if err := walkRefs(root, v, at+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolve(root any, ref string) error {
	local, ok := strings.CutPrefix(ref, "#")
	if !ok || !strings.HasPrefix(local, "/components/") {
		return fmt.Errorf("%s is not a local component reference", ref)
	}
	ptr, err := jsonpointer.New(local)
	if err != nil {
		return err
	}
	target, _, err := ptr.Get(root)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("%s resolves to null", ref)
	}
	return nil
}
