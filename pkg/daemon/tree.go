package daemon

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// TreeNode is one node of the joined accessibility/DOM view returned by
// GET /tree. Role and the AX id are always present; Name, Tag, and XPath
// are nil when the AX node has no backing DOM element or the element has
// no accessible name.
type TreeNode struct {
	ID       int         `json:"id"`
	Role     string      `json:"role"`
	Name     *string     `json:"name"`
	Tag      *string     `json:"tag"`
	XPath    *string     `json:"xpath"`
	Children []*TreeNode `json:"children"`
}

// domNode is a parsed CDP DOM.Node, trimmed to the fields the Tree Builder
// needs.
type domNode struct {
	backendNodeID int
	nodeType      int
	nodeName      string
	children      []*domNode
}

const domNodeTypeElement = 1

// BuildTree joins the page's full accessibility tree and DOM tree into a
// single hierarchical view with stable numeric IDs and per-node XPath, and
// returns the ID->XPath map that Selector Resolver later consults.
func BuildTree(page playwright.Page) (*TreeNode, map[int]string, error) {
	session, err := OpenCDPSession(page)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CDP session: %w", err)
	}

	domResp, err := session.Send("DOM.getDocument", map[string]interface{}{
		"depth":  -1,
		"pierce": true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get DOM document: %w", err)
	}

	rootRaw := asMap(mapGet(asMap(domResp), "root"))
	if rootRaw == nil {
		return nil, nil, fmt.Errorf("DOM.getDocument returned no root")
	}
	root := parseDOMNode(rootRaw)

	xpathByBackendID := make(map[int]string)
	tagByBackendID := make(map[int]string)
	computeXPaths(root, "", xpathByBackendID, tagByBackendID)

	axResp, err := session.Send("Accessibility.getFullAXTree", map[string]interface{}{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get accessibility tree: %w", err)
	}

	axNodesRaw := asSlice(mapGet(asMap(axResp), "nodes"))
	axByID := make(map[string]map[string]interface{}, len(axNodesRaw))
	childOf := make(map[string]bool, len(axNodesRaw))
	order := make([]string, 0, len(axNodesRaw))

	for _, raw := range axNodesRaw {
		node := asMap(raw)
		id := asString(mapGet(node, "nodeId"))
		if id == "" {
			continue
		}
		axByID[id] = node
		order = append(order, id)
		for _, c := range asSlice(mapGet(node, "childIds")) {
			childOf[asString(c)] = true
		}
	}

	rootID := ""
	for _, id := range order {
		if !childOf[id] {
			rootID = id
			break
		}
	}
	if rootID == "" && len(order) > 0 {
		rootID = order[0]
	}

	idXPath := make(map[int]string)
	nextID := 0
	var tree *TreeNode
	if rootID != "" {
		tree = buildAXSubtree(rootID, axByID, xpathByBackendID, tagByBackendID, idXPath, &nextID, make(map[string]bool))
	}

	return tree, idXPath, nil
}

func parseDOMNode(raw map[string]interface{}) *domNode {
	n := &domNode{
		backendNodeID: asInt(mapGet(raw, "backendNodeId")),
		nodeType:      asInt(mapGet(raw, "nodeType")),
		nodeName:      asString(mapGet(raw, "nodeName")),
	}
	for _, c := range asSlice(mapGet(raw, "children")) {
		n.children = append(n.children, parseDOMNode(asMap(c)))
	}
	return n
}

// computeXPaths walks the DOM tree depth-first, assigning each element a
// document-rooted XPath. A sibling index "[k]" is appended only when more
// than one same-tag sibling exists among the parent's element children.
func computeXPaths(node *domNode, parentPath string, xpathByBackendID, tagByBackendID map[int]string) {
	totals := make(map[string]int)
	for _, c := range node.children {
		if c.nodeType == domNodeTypeElement {
			totals[strings.ToLower(c.nodeName)]++
		}
	}

	counts := make(map[string]int)
	for _, c := range node.children {
		if c.nodeType != domNodeTypeElement {
			continue
		}
		tag := strings.ToLower(c.nodeName)
		counts[tag]++

		segment := tag
		if totals[tag] > 1 {
			segment = fmt.Sprintf("%s[%d]", tag, counts[tag])
		}
		childPath := parentPath + "/" + segment

		xpathByBackendID[c.backendNodeID] = childPath
		tagByBackendID[c.backendNodeID] = tag

		computeXPaths(c, childPath, xpathByBackendID, tagByBackendID)
	}
}

// buildAXSubtree recursively builds the joined tree from the AX node
// graph, assigning sequential stable numeric IDs in traversal order and
// copying each node's DOM xpath into idXPath so numeric selector tokens
// resolve to it.
func buildAXSubtree(
	nodeID string,
	axByID map[string]map[string]interface{},
	xpathByBackendID, tagByBackendID map[int]string,
	idXPath map[int]string,
	nextID *int,
	visited map[string]bool,
) *TreeNode {
	if visited[nodeID] {
		return nil
	}
	visited[nodeID] = true

	raw := axByID[nodeID]
	if raw == nil {
		return nil
	}

	id := *nextID
	*nextID++

	role, _ := fieldValue(raw, "role")

	node := &TreeNode{ID: id, Role: role}

	if name, ok := fieldValue(raw, "name"); ok && name != "" {
		node.Name = &name
	}

	if backendRaw, ok := mapGet(raw, "backendDOMNodeId").(float64); ok {
		backendID := int(backendRaw)
		if tag, ok := tagByBackendID[backendID]; ok {
			wrapped := "<" + tag + ">"
			node.Tag = &wrapped
		}
		if xpath, ok := xpathByBackendID[backendID]; ok {
			node.XPath = &xpath
			idXPath[id] = xpath
		}
	}

	for _, c := range asSlice(mapGet(raw, "childIds")) {
		child := buildAXSubtree(asString(c), axByID, xpathByBackendID, tagByBackendID, idXPath, nextID, visited)
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}

	return node
}
