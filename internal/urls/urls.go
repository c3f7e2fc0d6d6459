package urls

// Project is the meshcfg source repository.
const Project = "https://github.com/muurk/meshcfg"

// RemoteHardwareModule documents the remote hardware module settings the
// editor changes.
const RemoteHardwareModule = "https://meshtastic.org/docs/configuration/module/remote-hardware/"

// NetworkConfig covers enabling WiFi and Ethernet on a node, which is
// required for mDNS discovery and the TCP API.
const NetworkConfig = "https://meshtastic.org/docs/configuration/radio/network/"
