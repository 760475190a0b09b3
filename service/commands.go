package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"socialfeed/app/config"
	"socialfeed/app/repositories"
)

// loadConfig is swapped out in tests.
var loadConfig = func() (*config.Config, error) {
	return config.Load()
}

// Backups are written next to the database directory.
const backupDirName = "backups"

// HandleCommand runs an operator subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "help":
		PrintHelp()
		return 0
	case "serve", "clean", "init", "backup", "restore":
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		PrintHelp()
		return 1
	}

	if cmd == "restore" && len(args) < 2 {
		fmt.Println("Error: backup file path required for restore")
		return 1
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}

	code := 0
	switch cmd {
	case "serve":
		if err := RunAppServer(cfg); err != nil {
			fmt.Printf("Server error: %v\n", err)
			code = 1
		}
	case "clean":
		clean(cfg.DatabasePath)
	case "init":
		initDb(cfg.DatabasePath)
	case "backup":
		backup(cfg.DatabasePath)
	case "restore":
		code = restore(cfg.DatabasePath, args[1])
	}
	return code
}

// PrintHelp prints help for the operator subcommands.
func PrintHelp() {
	helpText := `Usage: socialfeed <command> [options]

Commands:
  serve                           Run the social feed API
  clean                           Remove the database
  init                            Initialize a new empty database
  backup                          Create a backup of the database
  restore [file]                  Restore database from backup
  version                         Show version information
  help                            Display this help message

Settings are read from the environment and an optional .env file
(PORT, DATABASE_PATH, JWT_SECRET, TOKEN_TTL, UPLOAD_DIR, MAX_UPLOAD_BYTES,
CORS_ORIGIN, LOG_LEVEL).
`
	fmt.Println(helpText)
}

func confirm(prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// clean removes the database.
func clean(dbPath string) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return
	}

	if err := os.RemoveAll(dbPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return
	}
	fmt.Println("Database cleaned successfully")
}

// initDb initializes a new empty database.
func initDb(dbPath string) {
	if _, err := os.Stat(dbPath); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return
	}

	store, err := repositories.Open(dbPath, nil)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
}

// backup writes a full backup of the database and returns the file name.
func backup(dbPath string) string {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return ""
	}

	backupDir := filepath.Join(filepath.Dir(dbPath), backupDirName)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return ""
	}

	store, err := repositories.Open(dbPath, nil)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return ""
	}
	defer store.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return ""
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return ""
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return backupFile
}

// restore restores the database from a backup.
func restore(dbPath, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(dbPath); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	store, err := repositories.Open(dbPath, nil)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.Load(f)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}
