package structs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVMIDSet(t *testing.T) {
	cases := []struct {
		Name      string
		Given     string
		Expect    []int64
		ExpectErr bool
	}{
		{"Empty", "", []int64{}, false},
		{"Blanks", " , ,", []int64{}, false},
		{"Single", "100", []int64{100}, false},
		{"SortedDeduped", "101, 100,101", []int64{100, 101}, false},
		{"Garbage", "100,abc", nil, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			set, err := ParseVMIDSet(c.Given)
			if c.ExpectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, c.Expect, set.IDs())
		})
	}
}

func TestVMIDSetContains(t *testing.T) {
	set := NewVMIDSet(101, 100, 300)

	assert.True(t, set.Contains(100))
	assert.True(t, set.Contains(300))
	assert.False(t, set.Contains(200))
	assert.False(t, set.Empty())
	assert.True(t, NewVMIDSet().Empty())
	assert.Equal(t, "[100, 101, 300]", set.String())
}

func TestPolicyDryRunActive(t *testing.T) {
	assert.True(t, (&Policy{DryRun: true}).DryRunActive())
	assert.True(t, (&Policy{ForceDryRun: true}).DryRunActive())
	assert.False(t, (&Policy{}).DryRunActive())
}

func TestPolicyOperationEnabled(t *testing.T) {
	p := DefaultPolicy()

	assert.False(t, p.OperationEnabled(RESTORE))
	assert.True(t, p.OperationEnabled(BACKUP))
	assert.False(t, p.OperationEnabled("SNAPSHOT"))
}
