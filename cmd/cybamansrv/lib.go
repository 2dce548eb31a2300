package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/isis-controls/cybaman/cybaman"
	"github.com/isis-controls/cybaman/generichttp"
	"github.com/isis-controls/cybaman/server/middleware/locker"
	"github.com/isis-controls/cybaman/sim"
	"github.com/isis-controls/cybaman/util"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-yaml/yaml"
)

// Minmax holds a min and max value
type Minmax struct {
	Min float64 `yaml:"Min"`
	Max float64 `yaml:"Max"`
}

// ObjSetup holds the arguments to stand up one simulated device
type ObjSetup struct {
	// Endpoint is the path the routes from this device will be served on
	// ex. Endpoint="/omc/cybaman" will produce routes of /omc/cybaman/tm, etc.
	Endpoint string `yaml:"Endpoint"`

	// Limits are server imposed software limits per axis
	Limits map[string]Minmax `yaml:"Limits"`

	// BackdoorAddr, when not empty, is the TCP address the simulator's
	// backdoor listens on.  Leave empty to disable the backdoor.
	BackdoorAddr string `yaml:"BackdoorAddr"`
}

// Config is a struct that holds the initialization parameters for the
// devices served.  It is to be populated by a yaml/unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	// Nodes is the list of devices to set up
	Nodes []ObjSetup `yaml:"Nodes"`
}

// LoadYaml converts a (path to a) yaml file into a Config struct
func LoadYaml(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	err = yaml.NewDecoder(f).Decode(&cfg)
	return cfg, err
}

// BuildMux stands up a simulated cybaman for every node in the config and
// returns a chi router with their handlers populated.  The mux serves a
// special route, /endpoints, which returns all routes as JSON.
func BuildMux(ctx context.Context, c Config) chi.Router {
	// make the root handler
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	for _, node := range c.Nodes {
		ctl := cybaman.NewController()
		go ctl.Run(ctx)

		if node.BackdoorAddr != "" {
			backdoor := sim.NewServer(ctl.Backdoor())
			if err := backdoor.Listen(node.BackdoorAddr); err != nil {
				log.Fatal("backdoor listen: ", err)
			}
			log.Println("simulator backdoor for", node.Endpoint, "at", backdoor.Addr())
		}

		limiters := map[string]util.Limiter{}
		for axis, mm := range node.Limits {
			limiters[strings.ToUpper(axis)] = util.Limiter{Min: mm.Min, Max: mm.Max}
		}
		httper := cybaman.NewHTTPWrapper(ctl, limiters)

		// add a lock interface for this node
		lock := locker.New()
		locker.Inject(httper, lock)

		// prepare the URL, "omc/cybaman" => "/omc/cybaman"
		hndlS := generichttp.SubMuxSanitize(node.Endpoint)

		// add the endpoints to the graph
		supergraph[hndlS] = httper.RT().Endpoints()

		// bind to the mux
		r := chi.NewRouter()
		r.Use(lock.Check)
		httper.RT().Bind(r)
		root.Mount(hndlS, r)
	}
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root
}
