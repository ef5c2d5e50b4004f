package lobbysdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// GetUserTunnels lists the signed-in user's proxy tunnels, sorted by proxy
// name.
func (c *Client) GetUserTunnels(ctx context.Context) ([]Tunnel, error) {
	env, err := c.Send(ctx, "/GetUserTunnel", http.MethodPost, nil)
	if err != nil {
		return nil, err
	}

	var resp tunnelsResponse
	if err := json.Unmarshal(env.Raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tunnels: %w", err)
	}

	tunnels := make([]Tunnel, 0, len(resp.Tunnel))
	for name, t := range resp.Tunnel {
		tunnels = append(tunnels, Tunnel{
			ProxyName: name,
			Link:      t.Link,
			NodeName:  t.NodeName,
		})
	}
	sort.Slice(tunnels, func(i, j int) bool {
		return tunnels[i].ProxyName < tunnels[j].ProxyName
	})

	return tunnels, nil
}
