package security

// In-memory client registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read","orders.write","orders.admin"}
	Enabled bool
}

var Clients = map[string]Client{
	"storefront-web": {ID: "storefront-web", Secret: "storefront-web-secret", Perms: []string{"orders.read", "orders.write"}, Enabled: true},
	"back-office":    {ID: "back-office", Secret: "back-office-secret", Perms: []string{"orders.read", "orders.write", "orders.admin"}, Enabled: true},
	"svc-warehouse":  {ID: "svc-warehouse", Secret: "warehouse-secret", Perms: []string{"orders.read"}, Enabled: true},
}
