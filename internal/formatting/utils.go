package formatting

import (
	"encoding/json"
	"fmt"
)

// PrettyJSON renders v as indented JSON for the console formatter. Values
// that cannot be marshaled fall back to their %v form.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
