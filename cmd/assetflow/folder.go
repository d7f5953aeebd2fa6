package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmaran/assetflow/internal/config"
)

var folderCategory string

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage watched folders",
}

var folderAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a folder to the watch list",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderAdd,
}

var folderRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a folder from the watch list",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderRemove,
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched folders",
	RunE:  runFolderList,
}

func init() {
	folderAddCmd.Flags().StringVar(&folderCategory, "category", "default", "Category for import rules")
	folderCmd.AddCommand(folderAddCmd, folderRemoveCmd, folderListCmd)
	rootCmd.AddCommand(folderCmd)
}

// runFolderAdd prefers the running watcher so the new folder attaches live;
// without one it edits the policy document directly.
func runFolderAdd(cmd *cobra.Command, args []string) error {
	path := args[0]

	if client, err := tryDial(cmd.Context()); err == nil {
		defer client.Close()
		added, err := client.AddFolder(cmd.Context(), path, folderCategory)
		if err != nil {
			return err
		}
		if !added {
			fmt.Println("Folder already being monitored")
			return nil
		}
		fmt.Printf("Watching %s (category: %s)\n", path, folderCategory)
		return nil
	}

	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return fmt.Errorf("watch folder does not exist: %s", path)
	}

	store := config.NewStore(configPath)
	policy, err := store.Load()
	if err != nil {
		return err
	}

	entry, added, err := policy.AddWatchFolder(path, folderCategory, true)
	if err != nil {
		return err
	}
	if !added {
		fmt.Println("Folder already being monitored")
		return nil
	}
	if err := store.Save(policy); err != nil {
		return err
	}

	fmt.Printf("Watching %s (category: %s)\n", entry.Path, folderCategory)
	return nil
}

func runFolderRemove(cmd *cobra.Command, args []string) error {
	path := args[0]

	if client, err := tryDial(cmd.Context()); err == nil {
		defer client.Close()
		removed, err := client.RemoveFolder(cmd.Context(), path)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println("Folder was not being monitored")
			return nil
		}
		fmt.Printf("Stopped watching %s\n", path)
		return nil
	}

	store := config.NewStore(configPath)
	policy, err := store.Load()
	if err != nil {
		return err
	}

	removed, err := policy.RemoveWatchFolder(path)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Println("Folder was not being monitored")
		return nil
	}
	if err := store.Save(policy); err != nil {
		return err
	}

	fmt.Printf("Stopped watching %s\n", path)
	return nil
}

func runFolderList(cmd *cobra.Command, args []string) error {
	store := config.NewStore(configPath)
	policy, err := store.Load()
	if err != nil {
		return err
	}

	if len(policy.WatchFolders) == 0 {
		fmt.Println("No folders configured")
		return nil
	}

	for _, entry := range policy.WatchFolders {
		status := "enabled"
		if !entry.Enabled {
			status = "disabled"
		}
		fmt.Printf("%s  category=%s  %s\n", entry.Path, entry.Category, status)
	}
	return nil
}
