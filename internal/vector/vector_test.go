package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagsGetOrDefault(t *testing.T) {
	tags := Tags{TagFilename: "a.txt"}

	assert.Equal(t, "a.txt", tags.GetOrDefault(TagFilename, "unknown"))
	assert.Equal(t, "unknown", tags.GetOrDefault(TagDocumentID, "unknown"))

	var nilTags Tags
	assert.Equal(t, "fallback", nilTags.GetOrDefault("anything", "fallback"))
}

func TestTagsMergeKeepsExisting(t *testing.T) {
	tags := Tags{"page": "3"}
	tags.Merge(Tags{
		TagDocumentID: "7",
		TagFilename:   "a.txt",
	})

	assert.Equal(t, "3", tags["page"])
	assert.Equal(t, "7", tags[TagDocumentID])
	assert.Equal(t, "a.txt", tags[TagFilename])
}
