package conversation

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// marshalMetadata encodes turn metadata. A nil mapping is stored as an empty object.
func marshalMetadata(value map[string]any) (datatypes.JSON, error) {
	if value == nil {
		return datatypes.JSON([]byte("{}")), nil
	}
	bytes, err := json.Marshal(value)
	return datatypes.JSON(bytes), err
}
