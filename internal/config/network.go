package config

type Network struct {
	// Link forces the detected link ("none", "wifi", "cellular" or "other").
	Link             string   `env:"LINK"`
	WifiPrefixes     []string `env:"WIFI_PREFIXES" envSeparator:"," envDefault:"wlan,wlp,wlx,wl,wifi,ath"`
	CellularPrefixes []string `env:"CELLULAR_PREFIXES" envSeparator:"," envDefault:"wwan,rmnet,ccmni,pdp,ppp"`
}
