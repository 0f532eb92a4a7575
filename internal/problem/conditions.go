package problem

import "github.com/san-kum/geartrain/internal/dynamo"

// OpSet1 and OpSet2 are the reference output requirements.
var (
	OpSet1 = []dynamo.OperatingCondition{
		{Speed: 1.8, Torque: 0.8, V: 9, IMax: 2.0},
		{Speed: 0.3, Torque: 1.2, V: 12, IMax: 2.0},
	}

	OpSet2 = []dynamo.OperatingCondition{
		{Speed: 1.35, Torque: 0.60, V: 9, IMax: 2.0},
		{Speed: 0.3, Torque: 1.0, V: 12, IMax: 2.0},
	}
)

// OpSets maps operating condition set names to their conditions.
var OpSets = map[string][]dynamo.OperatingCondition{
	"op_set_1": OpSet1,
	"op_set_2": OpSet2,
}

// DefaultOpSet is used when a problem is requested without conditions.
const DefaultOpSet = "op_set_2"
