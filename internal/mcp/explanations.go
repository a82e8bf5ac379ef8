package mcp

import "github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"

var bottleneckExplanations = map[string]string{
	engine.IDCPUBottleneck: `**CPU Bottleneck**
The processor is saturated while the graphics card waits for work. Frame rate is capped by the CPU.
**Root Causes:**
- CPU far below the GPU's class
- Background applications (browsers, launchers, overlays) competing for cores
- Low resolution or competitive settings that shift work onto the CPU
**Recommendations:**
- Close background applications and disable unneeded startup programs.
- Raise resolution or graphics quality to move work to the GPU.
- Check 'lookup_hardware' with kind=cpu for upgrade candidates.`,

	engine.IDCPUTierMismatch: `**CPU Weaker Than GPU**
The graphics card is at least two catalog tiers above the processor, so the GPU cannot be fully used in CPU-heavy games.
**Root Causes:**
- GPU upgraded without a matching CPU upgrade
**Recommendations:**
- Upgrade the CPU to within one tier of the GPU.
- Play at higher resolutions where the GPU does more of the work.`,

	engine.IDCPUBoostClock: `**CPU Not Reaching Boost Clock**
Under load the processor runs well below its rated boost clock.
**Root Causes:**
- Power saver or balanced power plan
- Thermal throttling from a clogged or undersized cooler
- BIOS power limits set below stock
**Recommendations:**
- Switch to a High Performance power plan.
- Check CPU temperature (see thermal-cpu).
- Reset BIOS power limits to defaults.`,

	engine.IDGPUBound: `**GPU Bound**
The graphics card is fully loaded while the CPU has headroom. This is the healthy state for a gaming PC.
**Recommendations:**
- No action needed. Lower graphics settings or upgrade the GPU for more frames.`,

	engine.IDGPUVRAMPressure: `**Video Memory Nearly Full**
More than 90% of VRAM is in use. Textures spill to system memory, causing stutter.
**Root Causes:**
- Texture quality or resolution too high for the card
- Other GPU-accelerated apps (browsers, video) holding VRAM
**Recommendations:**
- Lower texture quality and resolution scaling.
- Close other GPU-accelerated applications.
- Consider a card with more VRAM.`,

	engine.IDGPUTierMismatch: `**GPU Weaker Than CPU**
The processor is at least two catalog tiers above the graphics card. In games the GPU is the limit.
**Recommendations:**
- A GPU upgrade gives the largest gain on this system.
- Check 'lookup_hardware' with kind=gpu for upgrade candidates.`,

	engine.IDRAMSingleChannel: `**Single-Channel Memory**
Memory runs on one channel, halving bandwidth. Integrated graphics and CPU-bound games suffer most.
**Root Causes:**
- A single memory stick installed
- Two sticks in slots that share a channel
**Recommendations:**
- Install memory in matched pairs.
- Use the slots the motherboard manual marks for dual-channel (usually A2 and B2).`,

	engine.IDRAMLowCapacity: `**Low Memory Capacity**
Less than 16 GB installed. Modern games and a browser in the background exceed this.
**Recommendations:**
- Upgrade to at least 16 GB, ideally 32 GB, as a matched kit.`,

	engine.IDRAMHighUsage: `**High Memory Usage**
More than 85% of memory in use at scan time. The system pages to disk under load.
**Root Causes:**
- Browsers and background apps holding memory
- Too little memory installed for the workload
**Recommendations:**
- Close background apps before gaming.
- Disable unneeded startup programs.`,

	engine.IDRAMSlowSpeed: `**Slow Memory Speed**
Memory runs below the practical minimum for its generation (DDR4 3000, DDR5 4800 MT/s).
**Root Causes:**
- XMP/DOCP/EXPO profile disabled, so the kit runs at JEDEC defaults
- A slow kit
**Recommendations:**
- Enable XMP/DOCP/EXPO in the BIOS.
- If the kit is rated below the target speed, consider a faster kit.`,

	engine.IDStorageHDDBoot: `**Booting From a Hard Disk**
The operating system runs from a mechanical drive. Boot, load times and general responsiveness suffer.
**Recommendations:**
- Clone the system to an SSD or do a clean install on one.
- Prefer an NVMe SSD if the board has an M.2 slot.`,

	engine.IDStorageBootFull: `**Boot Drive Nearly Full**
The system drive is more than 80% full. Updates, page file and shader caches need free space.
**Recommendations:**
- Uninstall unused games and run Disk Cleanup.
- Move large files to another drive.`,

	engine.IDStorageNoNVMe: `**No NVMe Drive**
No NVMe SSD is installed. SATA SSDs are fine for games, but NVMe loads large assets faster.
**Recommendations:**
- Add an NVMe SSD for the OS and the most-played games if the board has an M.2 slot.`,

	engine.IDStorageHealthPrefix + "<model>": `**Drive Health Warning**
The drive's self-monitoring reports a status other than healthy. It may fail.
**Recommendations:**
- Back up the data on this drive now.
- Replace the drive.`,

	engine.IDThermalCPU: `**CPU Running Hot**
Processor temperature is high. Above about 90°C most CPUs throttle.
**Root Causes:**
- Dust in the cooler or case filters
- Dried thermal paste
- Fan curve too relaxed
**Recommendations:**
- Clean dust from the cooler and case filters.
- Check the fan curve and reapply thermal paste if the cooler is old.`,

	engine.IDThermalGPU: `**GPU Running Hot**
Graphics card temperature is high. The card lowers its clocks to stay within limits.
**Recommendations:**
- Improve case airflow.
- Use a more aggressive fan curve.`,

	engine.IDSettingsPowerPlan: `**Power Plan Not Set to Performance**
The power plan lets the CPU down-clock aggressively, adding latency when load spikes.
**Recommendations:**
- Control Panel > Power Options, select High Performance or Ultimate Performance.
- On Linux, use the performance governor or platform profile.`,

	engine.IDSettingsXMP: `**XMP Disabled**
The memory kit runs at JEDEC default speed instead of its rated profile.
**Recommendations:**
- Enter the BIOS and enable XMP (Intel) or DOCP/EXPO (AMD), then save and reboot.`,

	engine.IDSettingsReBAR: `**Resizable BAR Disabled**
The CPU can only address the GPU's memory in 256 MB windows. Some games lose a few percent.
**Recommendations:**
- Enable Above 4G Decoding and Resizable BAR (Smart Access Memory on AMD) in the BIOS.`,

	engine.IDSettingsHAGS: `**Hardware-Accelerated GPU Scheduling Disabled**
The GPU manages its own memory scheduling when this is on, lowering latency slightly.
**Recommendations:**
- Settings > System > Display > Graphics > Change default graphics settings, turn it on and reboot.`,

	engine.IDSettingsGameMode: `**Game Mode Disabled**
Game Mode keeps background updates and notifications from interrupting games.
**Recommendations:**
- Settings > Gaming > Game Mode, turn it on.`,
}
