package models

// AssetClass groups browsable instruments.
type AssetClass string

const (
	ClassUS          AssetClass = "US"
	ClassEurope      AssetClass = "Europe"
	ClassAsia        AssetClass = "Asia"
	ClassCommodities AssetClass = "Commodities"
	ClassBonds       AssetClass = "Bonds"
	ClassCrypto      AssetClass = "Crypto"
)

// Asset describes one instrument and the feeds that can serve it.
// Price instruments carry stooq+yahoo symbols; bond/econ rows a FRED
// series id; crypto rows a CoinGecko id.
type Asset struct {
	Name      string
	Class     AssetClass
	Stooq     string
	Yahoo     string
	Fred      string
	Coingecko string
}

// DefaultAssets returns the built-in instrument registry. The table is
// immutable configuration: constructed once and passed by value.
func DefaultAssets() []Asset {
	return []Asset{
		{Name: "S&P 500", Class: ClassUS, Stooq: "^spx", Yahoo: "^GSPC"},
		{Name: "Nasdaq-100", Class: ClassUS, Stooq: "^ndx", Yahoo: "^NDX"},
		{Name: "Russell 2000", Class: ClassUS, Stooq: "^rut", Yahoo: "^RUT"},

		{Name: "STOXX 600", Class: ClassEurope, Stooq: "stoxx600", Yahoo: "^STOXX"},
		{Name: "DAX", Class: ClassEurope, Stooq: "^dax", Yahoo: "^GDAXI"},
		{Name: "FTSE 100", Class: ClassEurope, Stooq: "^ukx", Yahoo: "^FTSE"},

		{Name: "Nikkei 225", Class: ClassAsia, Stooq: "^nkx", Yahoo: "^N225"},
		{Name: "TOPIX", Class: ClassAsia, Stooq: "topix", Yahoo: "^TOPX"},
		{Name: "Hang Seng", Class: ClassAsia, Stooq: "^hsi", Yahoo: "^HSI"},

		{Name: "WTI Crude", Class: ClassCommodities, Stooq: "cl.f", Yahoo: "CL=F"},
		{Name: "Brent Crude", Class: ClassCommodities, Stooq: "br.f", Yahoo: "BZ=F"},
		{Name: "Gold", Class: ClassCommodities, Stooq: "xauusd", Yahoo: "GC=F"},
		{Name: "Copper", Class: ClassCommodities, Stooq: "hg.f", Yahoo: "HG=F"},

		{Name: "US 10Y Yield", Class: ClassBonds, Fred: "DGS10"},
		{Name: "US 2Y Yield", Class: ClassBonds, Fred: "DGS2"},
		{Name: "HY OAS", Class: ClassBonds, Fred: "BAMLH0A0HYM2"},

		{Name: "Bitcoin", Class: ClassCrypto, Coingecko: "bitcoin"},
		{Name: "Ethereum", Class: ClassCrypto, Coingecko: "ethereum"},
	}
}

// FindAsset looks an instrument up by class and name.
func FindAsset(assets []Asset, class AssetClass, name string) (Asset, bool) {
	for _, a := range assets {
		if a.Class == class && a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// AssetClasses returns the classes present in the registry, first-seen
// order preserved.
func AssetClasses(assets []Asset) []AssetClass {
	var out []AssetClass
	seen := map[AssetClass]bool{}
	for _, a := range assets {
		if !seen[a.Class] {
			seen[a.Class] = true
			out = append(out, a.Class)
		}
	}
	return out
}
