package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildListDOM constructs: #document -> html -> body -> ul -> li, li
func buildListDOM() *domNode {
	li1 := &domNode{backendNodeID: 10, nodeType: domNodeTypeElement, nodeName: "LI"}
	li2 := &domNode{backendNodeID: 11, nodeType: domNodeTypeElement, nodeName: "LI"}
	ul := &domNode{backendNodeID: 9, nodeType: domNodeTypeElement, nodeName: "UL", children: []*domNode{li1, li2}}
	body := &domNode{backendNodeID: 8, nodeType: domNodeTypeElement, nodeName: "BODY", children: []*domNode{ul}}
	html := &domNode{backendNodeID: 7, nodeType: domNodeTypeElement, nodeName: "HTML", children: []*domNode{body}}
	doc := &domNode{nodeType: 9, nodeName: "#document", children: []*domNode{html}}
	return doc
}

func TestComputeXPathsSiblingIndexing(t *testing.T) {
	doc := buildListDOM()
	xpathByBackendID := make(map[int]string)
	tagByBackendID := make(map[int]string)

	computeXPaths(doc, "", xpathByBackendID, tagByBackendID)

	assert.Equal(t, "/html", xpathByBackendID[7])
	assert.Equal(t, "/html/body", xpathByBackendID[8])
	assert.Equal(t, "/html/body/ul", xpathByBackendID[9])
	assert.Equal(t, "/html/body/ul/li[1]", xpathByBackendID[10])
	assert.Equal(t, "/html/body/ul/li[2]", xpathByBackendID[11])
	assert.Equal(t, "li", tagByBackendID[10])
}

func axRole(value string) map[string]interface{} {
	return map[string]interface{}{"type": "role", "value": value}
}

func axString(value string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "value": value}
}

func TestBuildAXSubtreeJoinsXPathAndTag(t *testing.T) {
	doc := buildListDOM()
	xpathByBackendID := make(map[int]string)
	tagByBackendID := make(map[int]string)
	computeXPaths(doc, "", xpathByBackendID, tagByBackendID)

	axByID := map[string]map[string]interface{}{
		"1": {
			"nodeId":           "1",
			"role":             axRole("list"),
			"backendDOMNodeId": float64(9),
			"childIds":         []interface{}{"2", "3"},
		},
		"2": {
			"nodeId":           "2",
			"role":             axRole("listitem"),
			"name":             axString("a"),
			"backendDOMNodeId": float64(10),
		},
		"3": {
			"nodeId":           "3",
			"role":             axRole("listitem"),
			"name":             axString("b"),
			"backendDOMNodeId": float64(11),
		},
	}

	idXPath := make(map[int]string)
	nextID := 0
	tree := buildAXSubtree("1", axByID, xpathByBackendID, tagByBackendID, idXPath, &nextID, make(map[string]bool))

	require.NotNil(t, tree)
	assert.Equal(t, "list", tree.Role)
	require.Len(t, tree.Children, 2)

	require.NotNil(t, tree.Children[0].XPath)
	assert.Equal(t, "/html/body/ul/li[1]", *tree.Children[0].XPath)
	require.NotNil(t, tree.Children[1].XPath)
	assert.Equal(t, "/html/body/ul/li[2]", *tree.Children[1].XPath)

	require.NotNil(t, tree.Children[0].Tag)
	assert.Equal(t, "<li>", *tree.Children[0].Tag)

	// The returned ID->XPath map must let Selector Resolver round-trip.
	assert.Equal(t, "/html/body/ul/li[1]", idXPath[tree.Children[0].ID])
	assert.Equal(t, "/html/body/ul/li[2]", idXPath[tree.Children[1].ID])
}

func TestBuildAXSubtreeSelfReferenceDoesNotLoop(t *testing.T) {
	// A single node referencing itself should not infinite-loop; visited
	// guards against cycles.
	axByID := map[string]map[string]interface{}{
		"1": {"nodeId": "1", "role": axRole("generic"), "childIds": []interface{}{"1"}},
	}
	idXPath := make(map[int]string)
	nextID := 0
	tree := buildAXSubtree("1", axByID, map[int]string{}, map[int]string{}, idXPath, &nextID, make(map[string]bool))
	require.NotNil(t, tree)
	assert.Empty(t, tree.Children)
}
