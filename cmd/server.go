package cmd

import (
    "fmt"
    "github.com/aleph-zero/abacus/server"
    "github.com/aleph-zero/abacus/service/session"
    "github.com/spf13/cobra"
    "github.com/spf13/viper"
    "os"
    "time"
)

var serverCmd = &cobra.Command{
    Use:   "server",
    Short: "Run an abacus server",
    Long:  "Run an abacus server hosting independent calculator sessions over HTTP",
    Run: func(cmd *cobra.Command, args []string) {
        config := server.NewConfig(
            server.WithAddress(viper.GetString("server.addr")),
            server.WithPort(viper.GetUint16("server.port")),
            server.WithSessionConfig(session.NewConfig(
                session.WithTTL(viper.GetDuration("server.session-ttl")),
                session.WithCleanupInterval(viper.GetDuration("server.session-cleanup")))),
            server.WithClusterConfig(server.NewClusterConfig(
                server.WithClusterEnabled(viper.GetBool("cluster.enabled")),
                server.WithNodeName(viper.GetString("cluster.node-name")),
                server.WithMembershipListenAddr(viper.GetString("cluster.membership-listen-addr")),
                server.WithMembershipListenPort(viper.GetUint16("cluster.membership-listen-port")),
                server.WithMembershipJoinAddrs(viper.GetStringSlice("cluster.membership-join-addrs")))))
        server.Bootstrap(config)
    },
}

const (
    apiListenAddr        = "0.0.0.0"
    apiListenPort        = 1234
    sessionTTL           = 30 * time.Minute
    sessionCleanup       = time.Minute
    membershipListenAddr = "127.0.0.1"
    membershipListenPort = 5678
)

func init() {
    rootCmd.AddCommand(serverCmd)

    hostname, err := os.Hostname()
    if err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }

    serverCmd.PersistentFlags().String("server.addr", apiListenAddr, "Address to bind to")
    serverCmd.PersistentFlags().Uint16("server.port", apiListenPort, "Port to listen on")
    serverCmd.PersistentFlags().Duration("server.session-ttl", sessionTTL, "Idle time after which a session expires (0 disables expiry)")
    serverCmd.PersistentFlags().Duration("server.session-cleanup", sessionCleanup, "Interval between sweeps for expired sessions")
    serverCmd.PersistentFlags().Bool("cluster.enabled", false, "Join a gossip cluster and publish session counts")
    serverCmd.PersistentFlags().String("cluster.node-name", hostname, "Unique identifier for the server")
    serverCmd.PersistentFlags().String("cluster.membership-listen-addr", membershipListenAddr, "Cluster membership address")
    serverCmd.PersistentFlags().Uint16("cluster.membership-listen-port", membershipListenPort, "Cluster membership port")
    serverCmd.PersistentFlags().StringSlice("cluster.membership-join-addrs", nil, "Join existing cluster at these addresses")

    viper.BindPFlag("server.addr", serverCmd.PersistentFlags().Lookup("server.addr"))
    viper.BindPFlag("server.port", serverCmd.PersistentFlags().Lookup("server.port"))
    viper.BindPFlag("server.session-ttl", serverCmd.PersistentFlags().Lookup("server.session-ttl"))
    viper.BindPFlag("server.session-cleanup", serverCmd.PersistentFlags().Lookup("server.session-cleanup"))
    viper.BindPFlag("cluster.enabled", serverCmd.PersistentFlags().Lookup("cluster.enabled"))
    viper.BindPFlag("cluster.node-name", serverCmd.PersistentFlags().Lookup("cluster.node-name"))
    viper.BindPFlag("cluster.membership-listen-addr", serverCmd.PersistentFlags().Lookup("cluster.membership-listen-addr"))
    viper.BindPFlag("cluster.membership-listen-port", serverCmd.PersistentFlags().Lookup("cluster.membership-listen-port"))
    viper.BindPFlag("cluster.membership-join-addrs", serverCmd.PersistentFlags().Lookup("cluster.membership-join-addrs"))
}
