// Package seed fills an empty database with a demo farm: fields, the apple
// and grape stage tables, crops, a master/slave sensor network and readings.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/cadence"
	catalogRepoImp "agrisense/pkg/catalog/repositoryImp"
	catalogSvc "agrisense/pkg/catalog/service"
	catalogSvcImp "agrisense/pkg/catalog/serviceImp"
	cropRepoImp "agrisense/pkg/crop/repositoryImp"
	cropSvc "agrisense/pkg/crop/service"
	cropSvcImp "agrisense/pkg/crop/serviceImp"
	deviceRepoImp "agrisense/pkg/device/repositoryImp"
	deviceSvc "agrisense/pkg/device/service"
	deviceSvcImp "agrisense/pkg/device/serviceImp"
	fieldRepoImp "agrisense/pkg/field/repositoryImp"
	fieldSvc "agrisense/pkg/field/service"
	fieldSvcImp "agrisense/pkg/field/serviceImp"
	readingRepoImp "agrisense/pkg/reading/repositoryImp"
	readingSvc "agrisense/pkg/reading/service"
	readingSvcImp "agrisense/pkg/reading/serviceImp"
)

// ReadingsPerSlave is how many samples each sold slave gets, spaced by its tier.
const ReadingsPerSlave = 30

var appleStages = []catalogSvc.StageInput{
	{Number: 1, Name: "Dormancy", CritTemp10: -10.0, CritTemp90: -15.0},
	{Number: 2, Name: "Bud Swell", CritTemp10: -6.0, CritTemp90: -9.0},
	{Number: 3, Name: "Green Tip", CritTemp10: -4.0, CritTemp90: -7.0},
	{Number: 4, Name: "Half-inch Green", CritTemp10: -2.0, CritTemp90: -4.5},
	{Number: 5, Name: "Tight Cluster", CritTemp10: -2.0, CritTemp90: -4.5},
	{Number: 6, Name: "Pink", CritTemp10: -2.0, CritTemp90: -4.0},
	{Number: 7, Name: "Full Bloom", CritTemp10: -2.0, CritTemp90: -3.9},
	{Number: 8, Name: "Petal Fall", CritTemp10: -2.0, CritTemp90: -2.5},
}

var grapeStages = []catalogSvc.StageInput{
	{Number: 1, Name: "Bud Burst", CritTemp10: -3.0, CritTemp90: -5.0},
	{Number: 2, Name: "Leaf Unfolding", CritTemp10: -1.5, CritTemp90: -3.5},
	{Number: 3, Name: "Inflorescence", CritTemp10: -1.0, CritTemp90: -2.5},
	{Number: 4, Name: "Flowering", CritTemp10: -0.5, CritTemp90: -2.0},
}

// Summary counts what Run created.
type Summary struct {
	Fields, Species, Crops, Devices, Readings int
}

func fakeMAC(n uint64) string {
	b := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

// Run seeds db through the services, so everything inserted passes the same
// rules as the API. Readings end at clock.Now().
func Run(ctx context.Context, db *gorm.DB, clock clockwork.Clock) (*Summary, error) {
	fRepo, cRepo, dRepo, rRepo := fieldRepoImp.New(db), catalogRepoImp.New(db), deviceRepoImp.New(db), readingRepoImp.New(db)
	fields := fieldSvcImp.NewFieldService(fRepo)
	catalog := catalogSvcImp.NewCatalogService(cRepo)
	crops := cropSvcImp.NewCropService(cropRepoImp.New(db), fRepo, cRepo, clock)
	devices := deviceSvcImp.NewDeviceService(dRepo, fRepo, rRepo, deviceSvcImp.Deps{Clock: clock})
	readings := readingSvcImp.NewReadingService(rRepo, dRepo, readingSvcImp.Deps{Clock: clock})

	sum := &Summary{}
	now := clock.Now().UTC()

	// Fields
	type fieldIn struct {
		user, name string
		lon, lat   float64
		bio        bool
	}
	var fieldIDs []uuid.UUID
	for _, in := range []fieldIn{
		{"alice", "North Orchard", 11.1194, 46.0664, true},
		{"alice", "South Vineyard", 11.1302, 46.0591, false},
		{"bob", "West Field", 11.2389, 45.9760, true},
	} {
		f, err := fields.Create(ctx, fieldSvc.CreateField{Name: in.name, IsBio: in.bio, Longitude: f64(in.lon), Latitude: f64(in.lat), UserID: in.user})
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", in.name, err)
		}
		fieldIDs = append(fieldIDs, f.ID)
		sum.Fields++
	}
	orchard, vineyard, wheatField := fieldIDs[0], fieldIDs[1], fieldIDs[2]

	// Catalog
	apple, err := catalog.CreateSpecies(ctx, catalogSvc.SpeciesInput{
		CommonName: "Apple", ScientificName: "Malus domestica",
		Varieties: []catalogSvc.VarietyInput{{Name: "Golden Delicious", Stages: appleStages}, {Name: "Fuji"}},
	})
	if err != nil {
		return nil, fmt.Errorf("apple: %w", err)
	}
	grape, err := catalog.CreateSpecies(ctx, catalogSvc.SpeciesInput{
		CommonName: "Grapevine", ScientificName: "Vitis vinifera",
		Varieties: []catalogSvc.VarietyInput{{Name: "Pinot Grigio", Stages: grapeStages}},
	})
	if err != nil {
		return nil, fmt.Errorf("grapevine: %w", err)
	}
	wheat, err := catalog.CreateSpecies(ctx, catalogSvc.SpeciesInput{
		CommonName: "Common Wheat", ScientificName: "Triticum aestivum",
		Varieties: []catalogSvc.VarietyInput{{Name: "Bologna"}},
	})
	if err != nil {
		return nil, fmt.Errorf("wheat: %w", err)
	}
	sum.Species = 3

	// Crops
	golden, err := catalog.ListStages(ctx, variety(apple, "Golden Delicious"))
	if err != nil {
		return nil, err
	}
	pinot, err := catalog.ListStages(ctx, variety(grape, "Pinot Grigio"))
	if err != nil {
		return nil, err
	}
	for _, in := range []cropSvc.PlantCrop{
		{FieldID: orchard, VarietyID: variety(apple, "Golden Delicious"), PlantedAt: ago(now, 730), CurrentBloomStageID: &golden[5].ID},
		{FieldID: orchard, VarietyID: variety(apple, "Fuji"), PlantedAt: ago(now, 365)},
		{FieldID: vineyard, VarietyID: variety(grape, "Pinot Grigio"), PlantedAt: ago(now, 1460), CurrentBloomStageID: &pinot[1].ID},
		{FieldID: wheatField, VarietyID: variety(wheat, "Bologna"), PlantedAt: ago(now, 180)},
	} {
		if _, err := crops.Plant(ctx, in); err != nil {
			return nil, fmt.Errorf("crop: %w", err)
		}
		sum.Crops++
	}

	// Devices: masters first so slaves can reference them.
	m1, m2 := fakeMAC(1), fakeMAC(4)
	inactive := false
	for _, in := range []deviceSvc.RegisterDevice{
		{MAC: m1, Name: "Master Hub North Orchard", DeviceType: "MASTER", IsSold: true, UserID: "alice", FieldID: &orchard},
		{MAC: fakeMAC(2), Name: "Sensor Node A", DeviceType: "SLAVE", IsSold: true, UserID: "alice", FieldID: &orchard, UpdateInterval: str("NORMAL"), MasterMAC: &m1},
		{MAC: fakeMAC(3), Name: "Sensor Node B", DeviceType: "SLAVE", IsSold: true, UserID: "alice", FieldID: &orchard, UpdateInterval: str("HIGH"), MasterMAC: &m1},
		{MAC: m2, Name: "Master Hub South Vineyard", DeviceType: "MASTER", IsActive: &inactive, IsSold: true, UserID: "alice", FieldID: &vineyard},
		{MAC: fakeMAC(5), Name: "Sensor Node Vineyard", DeviceType: "SLAVE", IsSold: true, UserID: "alice", FieldID: &vineyard, UpdateInterval: str("LOW"), MasterMAC: &m2},
		{MAC: fakeMAC(6), Name: "Spare Unit", DeviceType: "SLAVE", IsActive: &inactive},
	} {
		d, err := devices.Register(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", in.MAC, err)
		}
		sum.Devices++
		if d.DeviceType != entities.DeviceSlave || !d.IsSold {
			continue
		}
		n, err := seedReadings(ctx, readings, d, now)
		if err != nil {
			return nil, err
		}
		sum.Readings += n
	}

	slog.Info("seed complete", "fields", sum.Fields, "species", sum.Species, "crops", sum.Crops, "devices", sum.Devices, "readings", sum.Readings)
	return sum, nil
}

// seedReadings writes a night-time cooling curve ending at now.
func seedReadings(ctx context.Context, svc readingSvc.ReadingService, d *entities.Device, now time.Time) (int, error) {
	gap := cadence.ExpectedGap(d.UpdateInterval)
	for i := 0; i < ReadingsPerSlave; i++ {
		at := now.Add(-time.Duration(ReadingsPerSlave-1-i) * gap)
		frac := float64(i) / float64(ReadingsPerSlave-1)
		in := readingSvc.ReadingInput{
			CreatedAt:    &at,
			Temperature:  f64(math.Round((4-6.5*frac)*10) / 10),
			Humidity:     math.Round(70 + 25*frac),
			Pressure:     1013,
			BatteryValue: 95 - i/3,
			TBU:          math.Round(frac*100) / 10,
			RSSI:         -60 - i%7,
		}
		if _, err := svc.Ingest(ctx, d.MAC, in, "seed"); err != nil {
			return i, fmt.Errorf("reading for %s: %w", d.MAC, err)
		}
	}
	return ReadingsPerSlave, nil
}

func ago(now time.Time, days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

func variety(s *entities.Species, name string) uuid.UUID {
	for _, v := range s.Varieties {
		if v.Name == name {
			return v.ID
		}
	}
	return uuid.Nil
}
