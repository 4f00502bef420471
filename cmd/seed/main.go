package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/DanielPodolsky/YelpCamp/internal/config"
	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/observability"
	"github.com/DanielPodolsky/YelpCamp/internal/repository/postgres"
	"github.com/DanielPodolsky/YelpCamp/internal/util"
)

const seedCount = 50

var descriptors = []string{
	"Forest", "Ancient", "Petrified", "Roaring", "Cascade",
	"Tumbling", "Silent", "Redwood", "Bullfrog", "Maple",
	"Misty", "Elk", "Grizzly", "Ocean", "Sky",
	"Dusty", "Diamond",
}

var places = []string{
	"Flats", "Village", "Canyon", "Pond", "Group Camp",
	"Horse Camp", "Ghost Town", "Camp", "Dispersed Camp", "Backcountry",
	"River", "Creek", "Creekside", "Bay", "Spring",
	"Bayshore", "Sands", "Mule Camp", "Hunting Camp", "Cliffs",
	"Hollow",
}

type city struct {
	name      string
	latitude  float64
	longitude float64
}

var cities = []city{
	{"Portland, Oregon", 45.5152, -122.6784},
	{"Boulder, Colorado", 40.0150, -105.2705},
	{"Asheville, North Carolina", 35.5951, -82.5515},
	{"Bend, Oregon", 44.0582, -121.3153},
	{"Missoula, Montana", 46.8721, -113.9940},
	{"Flagstaff, Arizona", 35.1983, -111.6513},
	{"Moab, Utah", 38.5733, -109.5498},
	{"Jackson, Wyoming", 43.4799, -110.7624},
	{"Lake Placid, New York", 44.2795, -73.9799},
	{"Bar Harbor, Maine", 44.3876, -68.2039},
	{"Gatlinburg, Tennessee", 35.7143, -83.5102},
	{"Estes Park, Colorado", 40.3772, -105.5217},
	{"Sedona, Arizona", 34.8697, -111.7610},
	{"Taos, New Mexico", 36.4072, -105.5731},
	{"Leavenworth, Washington", 47.5962, -120.6615},
	{"Mammoth Lakes, California", 37.6485, -118.9721},
	{"Stowe, Vermont", 44.4654, -72.6874},
	{"Duluth, Minnesota", 46.7867, -92.1005},
	{"Hot Springs, Arkansas", 34.5037, -93.0552},
	{"Marquette, Michigan", 46.5436, -87.3954},
}

const seedDescription = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. " +
	"Quo laudantium possimus ipsam quia accusamus velit officia magnam perspiciatis " +
	"pariatur natus, fugit tempore sequi, recusandae dolorem, cumque debitis accusantium iste."

// Seeds the database with a demo user and fifty campgrounds at random cities.
// Wipes existing campgrounds first so the result is deterministic in size.
func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)
	ctx := context.Background()

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `DELETE FROM review`); err != nil {
		log.Fatal().Err(err).Msg("clearing reviews failed")
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM campground_image`); err != nil {
		log.Fatal().Err(err).Msg("clearing images failed")
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM campground`); err != nil {
		log.Fatal().Err(err).Msg("clearing campgrounds failed")
	}

	users := postgres.NewUserRepo(db)
	campgrounds := postgres.NewCampgroundRepo(db)

	author, err := users.FindByUsername(ctx, "colt")
	if err != nil {
		hash, salt, derr := util.DerivePassword("campground")
		if derr != nil {
			log.Fatal().Err(derr).Msg("seed password derivation failed")
		}
		author, err = users.Create(ctx, "colt", "colt@example.com", hash, salt)
		if err != nil {
			log.Fatal().Err(err).Msg("seed user creation failed")
		}
		log.Info().Str("username", author.Username).Msg("seed user created")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < seedCount; i++ {
		spot := cities[rng.Intn(len(cities))]
		title := fmt.Sprintf("%s %s", descriptors[rng.Intn(len(descriptors))], places[rng.Intn(len(places))])
		price := float64(10 + rng.Intn(21))

		campgroundID := uuid.New()
		images := []domain.CampgroundImage{
			{
				ID:           uuid.New(),
				CampgroundID: campgroundID,
				URL:          fmt.Sprintf("https://picsum.photos/seed/yelpcamp-%d/800/600", i),
				ObjectKey:    fmt.Sprintf("seed/%d.jpg", i),
				Position:     0,
			},
		}

		_, err := campgrounds.Create(ctx, &domain.Campground{
			ID:          campgroundID,
			Title:       title,
			Price:       price,
			Description: seedDescription,
			Location:    spot.name,
			Longitude:   spot.longitude,
			Latitude:    spot.latitude,
			AuthorID:    author.ID,
		}, images)
		if err != nil {
			log.Fatal().Err(err).Str("title", title).Msg("seed campground failed")
		}
	}

	log.Info().Int("count", seedCount).Msg("seeding complete")
}
