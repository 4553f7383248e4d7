package main

type Command struct {
	Version struct{} `cmd:"" help:"Print version information."`
	Backup  struct {
		User          string `help:"mongodb user" short:"u" env:"MONGOBAK_USER" required:""`
		Password      string `help:"mongodb password" short:"p" env:"MONGOBAK_PASSWORD" required:""`
		Host          string `help:"mongodb host, tool default when empty"`
		Port          int    `help:"mongodb port, tool default when zero"`
		DB            string `help:"single database to dump instead of all databases"`
		LocalDir      string `help:"local backup directory path" short:"D" required:""`
		AttachedDir   string `help:"secondary directory to replicate the backup file into, must already exist"`
		DumpDir       string `help:"scratch dump directory, cleared before the dump" default:"/tmp/mongo_dump"`
		Prefix        string `help:"backup file name prefix" default:"backup"`
		S3Bucket      string `help:"upload the backup file to this S3 bucket" env:"MONGOBAK_S3_BUCKET"`
		S3Endpoint    string `help:"S3 endpoint" env:"MONGOBAK_S3_ENDPOINT"`
		S3AccessKey   string `help:"S3 access key id" env:"MONGOBAK_S3_ACCESS_KEY"`
		S3SecretKey   string `help:"S3 secret key" env:"MONGOBAK_S3_SECRET_KEY"`
		PurgeLocal    int    `help:"purge local backup files older than this many days"`
		PurgeAttached int    `help:"purge attached backup files older than this many days"`
		Cleanup       bool   `help:"remove the scratch dump directory when done" default:"true" negatable:""`
		Quiet         bool   `help:"suppress external tool output" short:"q"`
		Catalog       string `help:"record the run in this catalog database" short:"d"`
	} `cmd:"" help:"Dump the database, archive it and replicate the backup file."`
	Restore struct {
		User       string `help:"mongodb user" short:"u" env:"MONGOBAK_USER" required:""`
		Password   string `help:"mongodb password" short:"p" env:"MONGOBAK_PASSWORD" required:""`
		Archive    string `help:"backup archive path" short:"a" required:""`
		Host       string `help:"mongodb host, tool default when empty"`
		Port       int    `help:"mongodb port, tool default when zero"`
		StagingDir string `help:"staging directory the archive is extracted into, must not exist" default:"/tmp/mongo_dump"`
		Drop       bool   `help:"drop the ENTIRE running database before restoring"`
		SkipUsers  bool   `help:"do not restore system and user account records"`
		Cleanup    bool   `help:"remove the staging directory after a successful restore" default:"true" negatable:""`
		Quiet      bool   `help:"suppress external tool output" short:"q"`
		Catalog    string `help:"record the run in this catalog database" short:"d"`
	} `cmd:"" help:"Extract a backup archive and load it into a running server."`
	Purge struct {
		Dir    string `help:"directory to purge" short:"D" required:""`
		Prefix string `help:"backup file name prefix" default:"backup"`
		Days   int    `help:"delete backup files older than this many days" required:""`
	} `cmd:"" help:"Delete backup files older than the retention window."`
	Run struct {
		Config  string `help:"job config file path" short:"c" required:""`
		Catalog string `help:"record the runs in this catalog database" short:"d"`
	} `cmd:"" help:"Run the backup jobs from a config file once."`
	History struct {
		Catalog  string `help:"catalog database path" short:"d" required:""`
		Limit    int    `help:"number of runs to list" default:"10"`
		Restores bool   `help:"list restore runs instead of backup runs"`
	} `cmd:"" help:"List recent backup and restore runs."`
}
