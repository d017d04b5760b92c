// Command admin is the operator CLI for offline maintenance of the admin
// set and the player map. It works directly against the configured store,
// bypassing Telegram.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"wlbot/backend/internal/storage"

	"github.com/joho/godotenv"
)

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("  admins                      list admin usernames")
	fmt.Println("  grant <username>            add an admin")
	fmt.Println("  revoke <username>           remove an admin")
	fmt.Println("  players                     list player bindings")
	fmt.Println("  bind <nick> <telegram_id>   bind a nickname")
	fmt.Println("  unbind <nick>               remove a binding")
	os.Exit(1)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openStore() storage.Store {
	mainAdmin := getEnv("MAIN_ADMIN", "Errnick")
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		s, err := storage.NewRedisStore(addr, mainAdmin)
		if err != nil {
			log.Fatalf("failed to connect Redis: %v", err)
		}
		return s
	}
	s, err := storage.NewFileStore(getEnv("DATA_DIR", "BotFile"), mainAdmin)
	if err != nil {
		log.Fatalf("failed to open data dir: %v", err)
	}
	return s
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	if len(os.Args) < 2 {
		usage()
	}
	s := openStore()

	switch os.Args[1] {
	case "admins":
		admins, err := s.Admins()
		if err != nil {
			log.Fatalf("failed to load admins: %v", err)
		}
		for _, a := range admins {
			fmt.Println(a)
		}

	case "grant":
		if len(os.Args) != 3 {
			usage()
		}
		target := os.Args[2]
		admins, err := s.Admins()
		if err != nil {
			log.Fatalf("failed to load admins: %v", err)
		}
		for _, a := range admins {
			if a == target {
				fmt.Printf("%s is already an admin\n", target)
				return
			}
		}
		if err := s.SaveAdmins(append(admins, target)); err != nil {
			log.Fatalf("failed to save admins: %v", err)
		}
		fmt.Printf("%s granted admin\n", target)

	case "revoke":
		if len(os.Args) != 3 {
			usage()
		}
		target := os.Args[2]
		if target == getEnv("MAIN_ADMIN", "Errnick") {
			log.Fatalf("refusing to revoke the main admin")
		}
		admins, err := s.Admins()
		if err != nil {
			log.Fatalf("failed to load admins: %v", err)
		}
		kept := admins[:0]
		for _, a := range admins {
			if a != target {
				kept = append(kept, a)
			}
		}
		if err := s.SaveAdmins(kept); err != nil {
			log.Fatalf("failed to save admins: %v", err)
		}
		fmt.Printf("%s revoked\n", target)

	case "players":
		players, err := s.Players()
		if err != nil {
			log.Fatalf("failed to load players: %v", err)
		}
		for nick, id := range players {
			fmt.Printf("%s\t%d\n", nick, id)
		}

	case "bind":
		if len(os.Args) != 4 {
			usage()
		}
		id, err := strconv.ParseInt(os.Args[3], 10, 64)
		if err != nil {
			log.Fatalf("telegram_id must be numeric: %v", err)
		}
		if err := s.SetPlayer(os.Args[2], id); err != nil {
			log.Fatalf("failed to bind player: %v", err)
		}
		fmt.Printf("%s bound to %d\n", os.Args[2], id)

	case "unbind":
		if len(os.Args) != 3 {
			usage()
		}
		if err := s.RemovePlayer(os.Args[2]); err != nil {
			log.Fatalf("failed to unbind player: %v", err)
		}
		fmt.Printf("%s unbound\n", os.Args[2])

	default:
		usage()
	}
}
