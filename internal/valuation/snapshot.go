package valuation

import (
	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/shopspring/decimal"
)

// Snapshot is a read of all four ledger collections. It need not be
// transactionally consistent; aggregations over it are advisory.
type Snapshot struct {
	Harvests []model.Harvest
	Millings []model.Milling
	Storages []model.Storage
	Sales    []model.Sale
}

// soldByStorage sums sale quantities per container.
func (s Snapshot) soldByStorage() map[uint]decimal.Decimal {
	sold := make(map[uint]decimal.Decimal, len(s.Storages))
	for _, sale := range s.Sales {
		sold[sale.StorageID] = sold[sale.StorageID].Add(sale.QuantitySold)
	}
	return sold
}

func (s Snapshot) harvestsByID() map[uint]*model.Harvest {
	out := make(map[uint]*model.Harvest, len(s.Harvests))
	for i := range s.Harvests {
		out[s.Harvests[i].ID] = &s.Harvests[i]
	}
	return out
}

func (s Snapshot) milledHarvests() map[uint]bool {
	out := make(map[uint]bool, len(s.Millings))
	for _, m := range s.Millings {
		if m.HarvestID != nil {
			out[*m.HarvestID] = true
		}
	}
	return out
}
